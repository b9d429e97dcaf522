package cli

import (
	"github.com/spf13/cobra"

	"github.com/Agrid-Dev/thermoprops/pkg/api"
)

func newHealthCmd(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := d.client()
			if err != nil {
				return err
			}
			out, err := d.output()
			if err != nil {
				return err
			}

			status, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			v, err := c.Version(cmd.Context())
			if err != nil {
				return err
			}
			return out.Print(
				[]string{"STATUS", "TITLE", "VERSION"},
				[][]string{{status, v.Title, v.Version}},
				struct {
					api.HealthV1
					api.VersionV1
				}{api.HealthV1{Status: status}, v},
			)
		},
	}
}

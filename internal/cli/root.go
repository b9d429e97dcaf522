// Package cli implements thermoctl, a command line client for saturation
// lookups and BLEVE calculations.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Agrid-Dev/thermoprops/internal/bleve"
	"github.com/Agrid-Dev/thermoprops/internal/saturation"
	"github.com/Agrid-Dev/thermoprops/internal/thermoclient"
)

const (
	ProviderAPI   = "api"
	ProviderLocal = "local"
)

type globalFlags struct {
	apiURL   string
	provider string
	output   string
}

// deps builds what a command needs from the global flags. Commands receive
// it as closures so flags are read after parsing.
type deps struct {
	client func() (*thermoclient.Client, error)
	source func() (bleve.PropertiesSource, error)
	output func() (*Output, error)
}

func NewRootCmd(version string, stdout io.Writer) *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:           "thermoctl",
		Short:         "Water/steam saturation properties and BLEVE estimates",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)

	root.PersistentFlags().StringVar(&g.apiURL, "api-url", "http://localhost:8000", "thermoprops API base URL")
	root.PersistentFlags().StringVar(&g.provider, "provider", ProviderAPI, "where properties come from: api or local")
	root.PersistentFlags().StringVarP(&g.output, "output", "o", FormatTable, "output format: table, json or yaml")

	d := deps{
		client: func() (*thermoclient.Client, error) { return thermoclient.New(g.apiURL) },
		output: func() (*Output, error) { return NewOutput(g.output, stdout) },
	}
	d.source = func() (bleve.PropertiesSource, error) {
		switch g.provider {
		case ProviderLocal:
			return saturation.NewService(nil), nil
		case ProviderAPI:
			return d.client()
		default:
			return nil, fmt.Errorf("unknown provider %q (want api or local)", g.provider)
		}
	}

	root.AddCommand(
		newPropertiesCmd(d),
		newBleveCmd(d),
		newHealthCmd(d),
	)
	return root
}

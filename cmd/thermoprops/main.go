package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Agrid-Dev/thermoprops/cmd/app"
	"github.com/Agrid-Dev/thermoprops/internal/bleve"
	httpctrl "github.com/Agrid-Dev/thermoprops/internal/controllers/http"
	modbusctrl "github.com/Agrid-Dev/thermoprops/internal/controllers/modbus"
	mqttctrl "github.com/Agrid-Dev/thermoprops/internal/controllers/mqtt"
	"github.com/Agrid-Dev/thermoprops/internal/ports"
	"github.com/Agrid-Dev/thermoprops/internal/saturation"
	"github.com/Agrid-Dev/thermoprops/internal/telemetry"
)

type runner interface {
	Run(ctx context.Context) error
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to config file (.yaml/.yml/.json)")
	flag.Parse()

	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	app.ApplyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger := telemetry.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	var metrics *telemetry.Metrics
	if cfg.Metrics.Enabled {
		metrics = telemetry.NewMetrics()
	}
	var props ports.PropertiesService = saturation.NewService(saturation.IAPWS97{})
	props = telemetry.InstrumentLookups(props, metrics)
	calc := bleve.NewCalculator(props)

	runners, err := buildControllers(cfg, props, calc, logger, metrics)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for name, r := range runners {
		g.Go(func() error {
			logger.Info("controller starting", "controller", name)
			err := r.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("thermoprops exited", "err", err)
		os.Exit(1)
	}
	logger.Info("thermoprops stopped")
}

func buildControllers(cfg app.Config, props ports.PropertiesService, calc ports.BleveService, logger *slog.Logger, m *telemetry.Metrics) (map[string]runner, error) {
	runners := map[string]runner{}
	ctrl := cfg.Controllers

	if ctrl.HTTP.Enabled {
		runners["http"] = httpctrl.New(props, calc, httpctrl.Config{
			Addr:              ctrl.HTTP.Addr,
			Title:             cfg.Service.Title,
			Version:           cfg.Service.Version,
			ReadHeaderTimeout: ctrl.HTTP.ReadHeaderTimeout,
			ShutdownTimeout:   ctrl.HTTP.ShutdownTimeout,
			MetricsPath:       cfg.Metrics.Path,
		}, logger, m)
	}

	if ctrl.MQTT.Enabled {
		c, err := mqttctrl.New(props, mqttctrl.Config{
			InstanceID: cfg.InstanceID,
			BrokerURL:  ctrl.MQTT.BrokerURL,
			ClientID:   ctrl.MQTT.ClientID,
			BaseTopic:  ctrl.MQTT.BaseTopic,
			QoS:        ctrl.MQTT.QoS,
			Username:   ctrl.MQTT.Username,
			Password:   ctrl.MQTT.Password,
		}, logger)
		if err != nil {
			return nil, err
		}
		runners["mqtt"] = c
	}

	if ctrl.MODBUS.Enabled {
		c, err := modbusctrl.New(props, modbusctrl.Config{
			Addr:   ctrl.MODBUS.Addr,
			UnitID: ctrl.MODBUS.UnitID,
		}, logger)
		if err != nil {
			return nil, err
		}
		runners["modbus"] = c
	}

	return runners, nil
}

package main

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

type ConfigType struct {
	Iface           string
	From            net.IP
	To              net.IP
	Retries         int
	Timeout         time.Duration
	Interval        time.Duration
	AlertmanagerURL string
	MetricsListen   string
	LogLevel        string
}

var Config ConfigType

func (c *ConfigType) Load() error {
	return c.parse(os.Args[1:])
}

func (c *ConfigType) parse(args []string) error {
	app := kingpin.New("nat-failover",
		"Detects broken routing of a delegated address block by pinging from the default "+
			"address and from an address supposed to be routed. If the first works but the "+
			"second fails, injects a NAT MASQUERADE rule until the block is routed again.")
	app.Flag("iface", "WAN interface.").Short('i').Required().StringVar(&c.Iface)
	app.Flag("from", "Source IP whose routing is verified.").Short('f').Required().IPVar(&c.From)
	app.Flag("to", "IP to ping.").Short('t').Default("2001:4860:4860::8888").IPVar(&c.To)
	app.Flag("retries", "Failed probes before a path is declared unreachable.").Short('r').Default("5").IntVar(&c.Retries)
	app.Flag("timeout", "Per-probe reply timeout.").Default("500ms").DurationVar(&c.Timeout)
	app.Flag("interval", "Interval between detection cycles.").Default("15s").DurationVar(&c.Interval)
	app.Flag("alertmanager-url", "Alertmanager base URL.").Short('a').Required().StringVar(&c.AlertmanagerURL)
	app.Flag("metrics-listen", "Listen address of the metrics server.").Default(":9099").StringVar(&c.MetricsListen)
	app.Flag("log-level", "Log level (debug, info, warn, error).").Default("info").StringVar(&c.LogLevel)
	if _, err := app.Parse(args); err != nil {
		return err
	}
	return c.validate()
}

func (c *ConfigType) validate() error {
	if c.Retries < 1 {
		return errors.New("retries must be at least 1")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.Interval <= 0 {
		return errors.New("interval must be positive")
	}
	u, err := url.Parse(c.AlertmanagerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid alertmanager URL %q", c.AlertmanagerURL)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

package main

import (
	"context"
	"os/user"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := Config.Load(); err != nil {
		log.Fatal(err)
	}
	level, err := log.ParseLevel(Config.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(level)

	u, err := user.Current()
	if err != nil {
		log.Fatal(err)
	}
	if u.Uid != "0" {
		log.Fatal("please run under root")
	}

	coll = newCollector()

	go func() {
		if err := StartMetricsServer(); err != nil {
			log.Error(err)
		}
	}()

	rules, err := NewRuleManager(Config.From)
	if err != nil {
		log.Fatal(err)
	}

	ctrl := NewController(Config, rules, NewNotifier(Config.AlertmanagerURL))
	log.Infof("Watching routing of %s on %s, probing %s every %v",
		Config.From, Config.Iface, Config.To, Config.Interval)
	ctrl.RunLoop(context.Background())
}

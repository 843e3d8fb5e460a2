package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

// Alert is the Alertmanager v1 alert payload.
type Alert struct {
	Labels      map[string]string `json:"labels"`
	Annotations map[string]string `json:"annotations"`
	StartsAt    string            `json:"startsAt,omitempty"`
	EndsAt      string            `json:"endsAt,omitempty"`
}

// Notifier turns failover state edges into at most one opened and one
// closed alert per incident. Sends are best effort: failures are logged
// and the incident state still advances.
type Notifier struct {
	url         string
	labels      map[string]string
	annotations map[string]string
	open        bool
	openedAt    time.Time
	post        func(url string, alerts []Alert) error
}

func NewNotifier(url string) *Notifier {
	hostname, _ := os.Hostname()
	return &Notifier{
		url: url,
		labels: map[string]string{
			"alertname": fmt.Sprintf("NAT enabled on %s", hostname),
		},
		annotations: map[string]string{
			"description": "NAT enabled as fallback for routing problem",
		},
		post: postAlerts,
	}
}

// SetOpen reconciles the incident with the desired state. Calls that do
// not change the state are no-ops, so each open and close edge emits
// exactly one alert.
func (n *Notifier) SetOpen(open bool) {
	if open == n.open {
		return
	}
	alert := Alert{Labels: n.labels, Annotations: n.annotations}
	if open {
		n.openedAt = time.Now()
		alert.StartsAt = n.openedAt.Format(time.RFC3339)
		log.Debug("Opening the incident alert.")
	} else {
		alert.StartsAt = n.openedAt.Format(time.RFC3339)
		alert.EndsAt = time.Now().Format(time.RFC3339)
		n.openedAt = time.Time{}
		log.Debug("Resolving the incident alert.")
	}
	n.open = open
	if err := n.post(n.url, []Alert{alert}); err != nil {
		log.Errorf("Error posting the alert: %v", err)
		return
	}
	coll.alertSent()
}

func postAlerts(url string, alerts []Alert) error {
	body, err := json.Marshal(alerts)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url+"/api/v1/alerts", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("alertmanager returned %s", resp.Status)
	}
	return nil
}

// Copyright 2025 Certen Protocol

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegistryCountersIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	r.WorldsCreated.Inc()
	r.UpdatesAccepted.Inc()
	r.UpdatesRejected.WithLabelValues("InvalidResolution").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, f := range families {
		if f.GetName() == "htm_worlds_created_total" {
			found = true
			if got := f.Metric[0].Counter.GetValue(); got != 1 {
				t.Fatalf("htm_worlds_created_total = %v, want 1", got)
			}
		}
	}
	if !found {
		t.Fatal("expected htm_worlds_created_total to be registered")
	}
}

package cmd

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/jwen/rebalance"
)

func TestRegistryFromEnv(t *testing.T) {
	t.Setenv("RBL_INSTRUMENTS", "110011=101360@CN, VTI=$349938@US,F787=55210@CN>VTI,M001=88@CN*")

	registry, err := registryFromEnv(zerolog.Nop())
	if err != nil {
		t.Fatalf("registryFromEnv: %v", err)
	}

	for _, symbol := range []string{"110011", "VTI", "F787", "M001"} {
		if _, ok := registry.Lookup(symbol); !ok {
			t.Errorf("symbol %q not registered", symbol)
		}
	}

	f, _ := registry.Lookup("F787")
	feeder, ok := f.(rebalance.Feeder)
	if !ok {
		t.Fatalf("F787 is not a feeder")
	}
	if got := feeder.Underlying(); got != "VTI" {
		t.Errorf("F787 underlying = %q, want VTI", got)
	}

	m, _ := registry.Lookup("M001")
	fixed, ok := m.(rebalance.FixedComposition)
	if !ok {
		t.Fatalf("M001 has no fixed composition")
	}
	if w, ok := fixed.FixedComposition().Weight(rebalance.AssetCash); !ok || !w.Equal(rebalance.Q(1)) {
		t.Errorf("M001 fixed composition is not all cash")
	}
}

func TestRegistryFromEnvRejectsBadBindings(t *testing.T) {
	tests := []string{
		"110011",
		"110011=101360",
		"110011=101360@XX",
	}
	for _, binding := range tests {
		t.Setenv("RBL_INSTRUMENTS", binding)
		if _, err := registryFromEnv(zerolog.Nop()); err == nil {
			t.Errorf("registryFromEnv(%q) expected an error", binding)
		}
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"energy-agent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintResponse(t *testing.T) {
	resp := &models.StandardResponse{
		Answer: "⚡ Vous avez consommé 12.5 kWh hier.",
		Value:  12.5,
		Unit:   "kWh",
		Period: "1d",
		Status: models.StatusSuccess,
		Type:   models.TypeConsumption,
	}

	var text bytes.Buffer
	require.NoError(t, printResponse(&text, resp, "text"))
	assert.Equal(t, "⚡ Vous avez consommé 12.5 kWh hier.\n\n12.50 kWh (1d, consumption)\n", text.String())

	var raw bytes.Buffer
	require.NoError(t, printResponse(&raw, resp, "json"))
	var decoded models.StandardResponse
	require.NoError(t, json.Unmarshal(raw.Bytes(), &decoded))
	assert.Equal(t, "1d", decoded.Period)
}

func TestPrintResponse_Suggestions(t *testing.T) {
	resp := &models.StandardResponse{
		Answer:             "Je suis l'Energy Agent.",
		Status:             models.StatusOutOfScope,
		HelpfulSuggestions: []string{"Quelle a été ma consommation hier ?"},
	}
	var out bytes.Buffer
	require.NoError(t, printResponse(&out, resp, "text"))
	assert.Equal(t, "Je suis l'Energy Agent.\n  • Quelle a été ma consommation hier ?\n", out.String())
}

func TestAskCmd_RejectsUnknownOutput(t *testing.T) {
	cmd := newAskCmd()
	cmd.SetArgs([]string{"--output", "xml", "hier ?"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

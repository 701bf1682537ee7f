package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONConServicioYComponente(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Service: "crm-api", Out: &buf})

	c := l.Component("invites")
	c.Info().Str("org_id", "o-1").Msg("invitación aceptada")

	var ev map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ev))
	assert.Equal(t, "crm-api", ev["service"])
	assert.Equal(t, "invites", ev["component"])
	assert.Equal(t, "o-1", ev["org_id"])
	assert.Equal(t, "info", ev["level"])
}

func TestNew_NivelDesconocidoCaeAInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "ruidoso", Out: &buf})

	l.Debug().Msg("oculto")
	assert.Zero(t, buf.Len())
	l.Warn().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

package setup

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/papertrader/config"
)

func TestWriteConfig_LoadsBack(t *testing.T) {
	answers := DefaultAnswers()
	answers.InitialCash = "5000"
	answers.Currency = "usd"
	answers.TickInterval = "1s"
	answers.WindowSize = "40"
	answers.Journal = false

	path := filepath.Join(t.TempDir(), ConfigFile)
	require.NoError(t, WriteConfig(path, answers))

	conf, err := config.Parse([]string{"-config", path})
	require.NoError(t, err)
	assert.True(t, conf.InitialCash.Equal(decimal.NewFromInt(5000)))
	assert.True(t, conf.InitialPrice.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "USD", conf.Currency)
	assert.Equal(t, time.Second, conf.TickInterval)
	assert.Equal(t, 40, conf.WindowSize)
	assert.Equal(t, 10, conf.WarmupCandles)
	assert.False(t, conf.JournalEnabled)
}

func TestDefaultAnswers_MatchDefaultConfig(t *testing.T) {
	tmp, err := DefaultAnswers().ConfigTmp()
	require.NoError(t, err)
	assert.Equal(t, config.Default().TickInterval, tmp.TickInterval)
	assert.Equal(t, config.Default().WindowSize, tmp.WindowSize)
	assert.False(t, tmp.JournalDisabled)
}

func TestAnswers_ConfigTmpErrors(t *testing.T) {
	a := DefaultAnswers()
	a.TickInterval = "soon"
	_, err := a.ConfigTmp()
	assert.Error(t, err)

	a = DefaultAnswers()
	a.WindowSize = "many"
	_, err = a.ConfigTmp()
	assert.Error(t, err)
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(string) error
		input   string
		wantErr bool
	}{
		{"positive ok", validatePositive, "100", false},
		{"positive zero", validatePositive, "0", true},
		{"positive text", validatePositive, "abc", true},
		{"non-negative zero", validateNonNegative, "0", false},
		{"non-negative negative", validateNonNegative, "-1", true},
		{"percent ok", validatePercent, "3", false},
		{"percent too big", validatePercent, "100", true},
		{"duration ok", validateDuration, "3s", false},
		{"duration zero", validateDuration, "0s", true},
		{"duration text", validateDuration, "later", true},
		{"window ok", validatePositiveInt, "50", false},
		{"window zero", validatePositiveInt, "0", true},
		{"warmup zero", validateNonNegativeInt, "0", false},
		{"warmup negative", validateNonNegativeInt, "-1", true},
		{"currency rub", validateCurrency, "rub", false},
		{"currency unknown", validateCurrency, "XXXX", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestApplicationLabel(t *testing.T) {
	assert.Equal(t, "api", SinglePod{Name: "api"}.Label())
	assert.Equal(t, "shop - shop-7f9c", MultiPod{Application: "shop", PodName: "shop-7f9c"}.Label())
}

func TestApplicationKeyRoundTrip(t *testing.T) {
	apps := []Application{
		SinglePod{Name: "api"},
		SinglePod{Name: `we"ird & name`},
		MultiPod{Application: "shop", PodName: "shop-7f9c"},
	}
	for _, app := range apps {
		t.Run(app.Label(), func(t *testing.T) {
			require.True(t, gjson.Valid(app.Key()))
			got, err := ParseApplication(gjson.Parse(app.Key()))
			require.NoError(t, err)
			assert.Equal(t, app, got)
			assert.True(t, SameApplication(app, got))
		})
	}
}

func TestSameApplication(t *testing.T) {
	assert.True(t, SameApplication(SinglePod{Name: "a"}, SinglePod{Name: "a"}))
	assert.False(t, SameApplication(SinglePod{Name: "a"}, SinglePod{Name: "b"}))
	// A single pod named like an application is a different target.
	assert.False(t, SameApplication(SinglePod{Name: "shop"}, MultiPod{Application: "shop", PodName: ""}))
	assert.False(t, SameApplication(SinglePod{Name: "a"}, nil))
	assert.True(t, SameApplication(nil, nil))
}

func TestParseApplication(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    Application
		wantErr bool
	}{
		{"single", `{"name":"api"}`, SinglePod{Name: "api"}, false},
		{"multi", `{"application":"shop","podName":"p1"}`, MultiPod{Application: "shop", PodName: "p1"}, false},
		{"multi wins over name", `{"name":"x","application":"shop","podName":"p1"}`, MultiPod{Application: "shop", PodName: "p1"}, false},
		{"multi missing pod", `{"application":"shop"}`, nil, true},
		{"empty object", `{}`, nil, true},
		{"not object", `"api"`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseApplication(gjson.Parse(tt.json))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

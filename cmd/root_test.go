package cmd

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_JSONFlagExists(t *testing.T) {
	jsonOutput = false

	flag := rootCmd.PersistentFlags().Lookup("json")

	require.NotNil(t, flag, "--json flag should exist")
	assert.Equal(t, "false", flag.DefValue)
	assert.Equal(t, "Output in JSON format", flag.Usage)
}

func TestRootCmd_JSONFlagShorthand(t *testing.T) {
	flag := rootCmd.PersistentFlags().ShorthandLookup("j")

	require.NotNil(t, flag, "-j shorthand should exist")
	assert.Equal(t, "json", flag.Name)
}

func TestRootCmd_LogLevelFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("log-level")

	require.NotNil(t, flag, "--log-level flag should exist")
	assert.Equal(t, "", flag.DefValue)
}

func TestRootCmd_GetJSONMode(t *testing.T) {
	jsonOutput = false
	assert.False(t, GetJSONMode())

	jsonOutput = true
	assert.True(t, GetJSONMode())

	jsonOutput = false
}

func TestRootCmd_Version(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--version"})
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	_ = rootCmd.Execute()

	assert.Contains(t, out.String(), "wst version")
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"account", "configure", "forex", "order", "quote", "security"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestResolveSecurityID(t *testing.T) {
	server := newFakeService(t, map[string]http.HandlerFunc{
		"GET /securities": respond(testSearch),
	})

	app, err := testLoader(server.URL)()
	require.NoError(t, err)
	client, err := app.connect(context.Background())
	require.NoError(t, err)

	tests := []struct {
		arg     string
		want    string
		wantErr string
	}{
		{arg: "sec-s-abc", want: "sec-s-abc"},
		{arg: "shop", want: "sec-s-shop"},
		{arg: "SHOP.NE", want: "sec-s-shop-ne"},
		{arg: "SH", wantErr: "no security found for symbol SH"},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := resolveSecurityID(context.Background(), client, tt.arg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

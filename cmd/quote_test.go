package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quoteRoutes(forexCalls *int) map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"GET /securities":            respond(testSearch),
		"GET /securities/sec-s-shop": respond(testShopDetail),
		"GET /securities/sec-s-ry": respond(`{
			"id":"sec-s-ry","currency":"CAD",
			"stock":{"symbol":"RY"},
			"quote":{"ask":"130.10","bid":"130.00","amount":"130.05"}
		}`),
		"GET /forex": func(w http.ResponseWriter, r *http.Request) {
			*forexCalls++
			_, _ = w.Write([]byte(testForex))
		},
	}
}

func TestQuoteCmd_SingleSymbol(t *testing.T) {
	forexCalls := 0
	server := newFakeService(t, quoteRoutes(&forexCalls))

	out, err := execute(t, newQuoteCmd(quoteOptions{load: testLoader(server.URL)}), "shop")
	require.NoError(t, err)

	assert.Contains(t, out, "SHOP")
	assert.Contains(t, out, "sec-s-shop")
	assert.Contains(t, out, "100.00")
	assert.Contains(t, out, "101.00")
	assert.Contains(t, out, "100.50")
	assert.Contains(t, out, "USD")
	assert.Equal(t, 0, forexCalls)
}

func TestQuoteCmd_SecurityIDSkipsSearch(t *testing.T) {
	forexCalls := 0
	routes := quoteRoutes(&forexCalls)
	routes["GET /securities"] = func(w http.ResponseWriter, r *http.Request) {
		t.Error("search should not run for a security id")
	}
	server := newFakeService(t, routes)

	out, err := execute(t, newQuoteCmd(quoteOptions{load: testLoader(server.URL)}), "sec-s-ry")
	require.NoError(t, err)
	assert.Contains(t, out, "130.05")
	assert.Contains(t, out, "CAD")
}

func TestQuoteCmd_Convert(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantPrice float64
	}{
		{"last at buy rate", []string{"SHOP", "--convert"}, 130.65},
		{"last at sell rate", []string{"SHOP", "--convert", "--last-at-sell-rate"}, 128.64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forexCalls := 0
			server := newFakeService(t, quoteRoutes(&forexCalls))

			out, err := execute(t, newQuoteCmd(quoteOptions{load: testLoader(server.URL), jsonMode: true}), tt.args...)
			require.NoError(t, err)

			var quotes []map[string]any
			require.NoError(t, json.Unmarshal([]byte(out), &quotes))
			require.Len(t, quotes, 1)

			q := quotes[0]
			assert.Equal(t, "SHOP", q["symbol"])
			assert.Equal(t, "CAD", q["currency"])
			assert.Equal(t, true, q["converted"])
			assert.InDelta(t, 130.0, q["bid"], 1e-9)
			assert.InDelta(t, 129.28, q["ask"], 1e-9)
			assert.InDelta(t, tt.wantPrice, q["price"], 1e-9)
			assert.Equal(t, 1, forexCalls)
		})
	}
}

func TestQuoteCmd_MultipleSymbols(t *testing.T) {
	forexCalls := 0
	server := newFakeService(t, quoteRoutes(&forexCalls))

	out, err := execute(t, newQuoteCmd(quoteOptions{load: testLoader(server.URL)}), "SHOP", "sec-s-ry", "--convert")
	require.NoError(t, err)

	assert.Contains(t, out, "sec-s-shop")
	assert.Contains(t, out, "sec-s-ry")
	assert.Contains(t, out, "CAD (converted)")
	assert.Contains(t, out, "130.65")
	// Only the USD security needs rates.
	assert.Equal(t, 1, forexCalls)
}

func TestQuoteCmd_NoSymbols(t *testing.T) {
	_, err := execute(t, newQuoteCmd(quoteOptions{load: testLoader("http://unused")}))
	assert.Error(t, err)
}

func TestQuoteCmd_APIError(t *testing.T) {
	forexCalls := 0
	routes := quoteRoutes(&forexCalls)
	routes["GET /securities/sec-s-ry"] = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, `{"error":"security not found"}`)
	}
	server := newFakeService(t, routes)

	_, err := execute(t, newQuoteCmd(quoteOptions{load: testLoader(server.URL)}), "sec-s-ry")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get quote for sec-s-ry")
	assert.Contains(t, err.Error(), "security not found")
}

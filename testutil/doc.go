// Package testutil provides test doubles and fixtures shared by the window,
// soak and command tests.
//
// MockNATSClient is an in-memory stand-in for natsclient.Client. It supports
// NATS subject wildcards, records every published message and delivers to
// subscribers synchronously, so tests can publish and assert without a server:
//
//	client := testutil.NewMockNATSClient()
//	require.NoError(t, win.Attach(ctx, client, "samples.>"))
//	require.NoError(t, client.Publish(ctx, "samples.cpu", testutil.SamplePayload("samples.cpu", 0.5, 0)))
//
// ValidSamples and InvalidSamples hold raw payloads for ingestion tests.
// Tests that need a real server use testcontainers behind the integration build
// tag instead.
package testutil

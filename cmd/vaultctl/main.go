package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// vaultctl is a small operator CLI for a running vaultd.

var baseURL string

func main() {
	root := &cobra.Command{
		Use:           "vaultctl",
		Short:         "Inspect and drive a running vaultd",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultURL := "http://127.0.0.1:8090"
	if v := os.Getenv("VAULTD_URL"); v != "" {
		defaultURL = v
	}
	root.PersistentFlags().StringVar(&baseURL, "url", defaultURL, "Base URL of the vaultd HTTP API")

	root.AddCommand(
		&cobra.Command{Use: "state", Short: "Print the lifecycle snapshot", RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/state")
		}},
		&cobra.Command{Use: "status", Short: "Print the detailed controller status", RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/status")
		}},
		&cobra.Command{Use: "install", Short: "Replay the captured install prompt", RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/install", nil)
		}},
		&cobra.Command{Use: "permission", Short: "Request notification permission", RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/notifications/request", nil)
		}},
	)

	update := &cobra.Command{Use: "update", Short: "Update coordinator actions"}
	update.AddCommand(&cobra.Command{Use: "apply", Short: "Activate the pending update", RunE: func(cmd *cobra.Command, args []string) error {
		return postJSON("/update/apply", nil)
	}})
	var mode string
	dismiss := &cobra.Command{Use: "dismiss", Short: "Dismiss the pending update prompt", RunE: func(cmd *cobra.Command, args []string) error {
		return postJSON("/update/dismiss", map[string]string{"mode": mode})
	}}
	dismiss.Flags().StringVar(&mode, "mode", "postpone", "Dismissal mode: postpone or mute")
	update.AddCommand(dismiss)
	root.AddCommand(update)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "vaultctl:", err)
		os.Exit(1)
	}
}

var client = &http.Client{Timeout: 30 * time.Second}

func getJSON(path string) error {
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printResponse(resp)
}

func postJSON(path string, body any) error {
	if body == nil {
		body = map[string]string{}
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	// Pretty-print JSON bodies; pass anything else through.
	var buf bytes.Buffer
	if json.Indent(&buf, b, "", "  ") == nil {
		b = buf.Bytes()
	}
	fmt.Println(string(b))
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s", resp.Status)
	}
	return nil
}

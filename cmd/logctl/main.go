// Package main is the logctl command line client for the LogAnalyzer API.
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

var (
	serverURL string
	apiKey    string
	output    string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "logctl",
		Short:         "Command line client for the LogAnalyzer API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&serverURL, "server",
		envOr("LOGANALYZER_SERVER", "http://localhost:8080"), "API server base URL")
	root.PersistentFlags().StringVar(&apiKey, "api-key",
		os.Getenv("LOGANALYZER_API_KEY"), "API key for authentication")

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newGetCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	var (
		prompt      string
		contextFile string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a custom analysis prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			if prompt == "" {
				return fmt.Errorf("--prompt is required")
			}

			req := map[string]any{"prompt": prompt}
			if contextFile != "" {
				data, err := os.ReadFile(contextFile)
				if err != nil {
					return fmt.Errorf("reading context file: %w", err)
				}
				if !json.Valid(data) {
					return fmt.Errorf("context file %s is not valid JSON", contextFile)
				}
				req["context"] = json.RawMessage(data)
			}

			body, err := json.Marshal(req)
			if err != nil {
				return err
			}
			return doRequest(http.MethodPost, "/api/v1/prompts", bytes.NewReader(body))
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "analysis prompt (required)")
	cmd.Flags().StringVarP(&contextFile, "context", "c", "", "path to a JSON context file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the response to a file instead of stdout")
	return cmd
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <batch-id>",
		Short: "Fetch a stored analysis batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodGet, "/api/v1/batches/"+args[0], nil)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the response to a file instead of stdout")
	return cmd
}

func doRequest(method, path string, body io.Reader) error {
	req, err := http.NewRequest(method, serverURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("calling API: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
	}

	pretty := data
	var buf bytes.Buffer
	if json.Indent(&buf, data, "", "  ") == nil {
		pretty = buf.Bytes()
	}

	if output != "" {
		if err := os.WriteFile(output, pretty, 0o644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		fmt.Println("Wrote response to", output)
		return nil
	}

	fmt.Println(string(pretty))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"modelmgrd/pkg/types"
)

func buildRootCmd() *cobra.Command {
	addr := os.Getenv("MODELMGRD_ADDR")
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	root := &cobra.Command{
		Use:           "modelctl",
		Short:         "Manage models on a running modelmgrd daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&addr, "addr", addr, "Daemon address (defaults MODELMGRD_ADDR or 127.0.0.1:8080)")

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all registered models",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out types.ModelListResponse
			if err := newClient(addr).do("GET", "/models/list", nil, &out); err != nil {
				return err
			}
			return printJSON(out.Models)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "loaded",
		Short: "List models currently loaded in memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out types.ModelListResponse
			if err := newClient(addr).do("GET", "/models/loaded", nil, &out); err != nil {
				return err
			}
			return printJSON(out.Models)
		},
	})

	dl := &cobra.Command{
		Use:   "download <model-id> <repo-id>",
		Short: "Start downloading a model from the hub",
		Args:  cobra.ExactArgs(2),
	}
	dlType := dl.Flags().String("model-type", "llm", "Model type: llm|embedding|analysis|summarization")
	dlName := dl.Flags().String("model-name", "", "Display name (defaults to model id)")
	dlFile := dl.Flags().String("filename", "", "Fetch a single file instead of the whole repository")
	dlCaps := dl.Flags().StringSlice("capability", nil, "Capability tag (repeatable)")
	dl.RunE = func(cmd *cobra.Command, args []string) error {
		cfg := types.ModelConfig{
			ModelID:      args[0],
			RepoID:       args[1],
			ModelType:    types.ModelType(*dlType),
			ModelName:    *dlName,
			Filename:     *dlFile,
			Capabilities: *dlCaps,
		}
		var out types.DownloadResponse
		if err := newClient(addr).do("POST", "/models/download", cfg, &out); err != nil {
			return err
		}
		return printJSON(out)
	}
	root.AddCommand(dl)

	root.AddCommand(&cobra.Command{
		Use:   "status <download-id>",
		Short: "Show the status of a download task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out types.DownloadTask
			if err := newClient(addr).do("GET", "/models/download/"+url.PathEscape(args[0])+"/status", nil, &out); err != nil {
				return err
			}
			return printJSON(out)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "load <model-id>",
		Short: "Load a model into memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out types.StatusResponse
			if err := newClient(addr).do("POST", "/models/load/"+url.PathEscape(args[0]), nil, &out); err != nil {
				return err
			}
			fmt.Println(out.Message)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "unload <model-id>",
		Short: "Unload a model from memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out types.StatusResponse
			if err := newClient(addr).do("POST", "/models/unload/"+url.PathEscape(args[0]), nil, &out); err != nil {
				return err
			}
			fmt.Println(out.Message)
			return nil
		},
	})

	sw := &cobra.Command{
		Use:   "switch <model-id>",
		Short: "Make a model the active one for its type",
		Args:  cobra.ExactArgs(1),
	}
	swType := sw.Flags().String("model-type", "llm", "Model type to switch")
	sw.RunE = func(cmd *cobra.Command, args []string) error {
		var out types.StatusResponse
		path := "/models/switch/" + url.PathEscape(args[0]) + "?model_type=" + url.QueryEscape(*swType)
		if err := newClient(addr).do("POST", path, nil, &out); err != nil {
			return err
		}
		fmt.Println(out.Message)
		return nil
	}
	root.AddCommand(sw)

	root.AddCommand(&cobra.Command{
		Use:   "delete <model-id>",
		Short: "Remove a model from the registry and delete its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out types.StatusResponse
			if err := newClient(addr).do("DELETE", "/models/"+url.PathEscape(args[0]), nil, &out); err != nil {
				return err
			}
			fmt.Println(out.Message)
			return nil
		},
	})

	return root
}

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

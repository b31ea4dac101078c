package tool

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hupe1980/tribunal/core"
)

// WriteFileOptions configure the write_file tool.
type WriteFileOptions struct {
	// Dir is the directory reports are written into. Created on first use.
	Dir string
	// SaveArtifact mirrors the written file into the session artifact store
	// under its filename when a store is configured.
	SaveArtifact bool
}

// NewWriteFileTool returns a tool that writes text content to a file inside
// the configured reports directory. The directory is created if missing and
// an existing file with the same name is overwritten.
func NewWriteFileTool(optFns ...func(o *WriteFileOptions)) *FunctionTool {
	opts := WriteFileOptions{
		Dir:          "court_reports",
		SaveArtifact: true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return NewFunctionTool(
		"write_file",
		"Write text content to a file in the reports directory. Overwrites any existing file with the same name.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"filename": map[string]any{
					"type":        "string",
					"description": "Name of the file to write, without directory components",
				},
				"content": map[string]any{
					"type":        "string",
					"description": "Full text content of the file",
				},
			},
			"required": []string{"filename", "content"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			filename, _ := args["filename"].(string)
			content, _ := args["content"].(string)

			if filename == "" {
				return nil, NewToolError("write_file", "filename must not be empty", "VALIDATION_ERROR")
			}

			// Reports never leave the configured directory.
			if filepath.Base(filename) != filename {
				return nil, NewToolError(
					"write_file",
					fmt.Sprintf("filename %q must not contain directory components", filename),
					"VALIDATION_ERROR",
				)
			}

			if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
				return nil, fmt.Errorf("create reports directory: %w", err)
			}

			path := filepath.Join(opts.Dir, filename)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return nil, fmt.Errorf("write report file: %w", err)
			}

			if opts.SaveArtifact {
				if err := toolCtx.SaveArtifact(filename, []byte(content)); err != nil {
					toolCtx.LogWarn("write_file.artifact_skipped", "filename", filename, "error", err.Error())
				}
			}

			toolCtx.LogInfo("write_file.saved", "path", path, "bytes", len(content))

			return map[string]any{
				"status": "success",
				"path":   path,
			}, nil
		},
	)
}

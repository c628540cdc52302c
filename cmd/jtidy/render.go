package main

import (
	"encoding/json"
	"fmt"
	"io"

	"jtidy/internal/driver"
)

func renderStdout(out io.Writer, results []driver.Result) error {
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		if _, err := out.Write(res.Formatted); err != nil {
			return err
		}
	}
	return nil
}

// renderText lists changed files. Failed files are left to the returned
// run error.
func renderText(out io.Writer, results []driver.Result, check, quiet bool) error {
	if quiet && !check {
		return nil
	}
	for _, res := range results {
		if res.Err != nil || !res.Changed {
			continue
		}
		var err error
		if check {
			_, err = fmt.Fprintln(out, res.Path)
		} else {
			_, err = fmt.Fprintf(out, "rewrote %s (%d edits)\n", res.Path, res.Edits)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type jsonResult struct {
	Path     string `json:"path"`
	Changed  bool   `json:"changed"`
	Cached   bool   `json:"cached,omitempty"`
	Edits    int    `json:"edits"`
	Error    string `json:"error,omitempty"`
	CheckRun bool   `json:"check"`
}

func renderJSON(out io.Writer, results []driver.Result, check bool) error {
	payload := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{
			Path:     res.Path,
			Changed:  res.Changed,
			Cached:   res.Cached,
			Edits:    res.Edits,
			CheckRun: check,
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		payload = append(payload, jr)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

package report

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestWriteProduct(t *testing.T) {
	var buf bytes.Buffer
	diags := []Diagnostic{
		Info("Data was resampled at 250Hz."),
		Warning("GPU execution requested but not available; running on CPU."),
		Success("Data was successfully resampled."),
	}
	if err := WriteProduct(&buf, diags); err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Brainlife []struct {
			Type string `json:"type"`
			Msg  string `json:"msg"`
		} `json:"brainlife"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("product.json is not valid JSON: %v", err)
	}
	if len(decoded.Brainlife) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(decoded.Brainlife))
	}
	if decoded.Brainlife[0].Type != "info" || decoded.Brainlife[2].Type != "success" {
		t.Errorf("unexpected message kinds: %+v", decoded.Brainlife)
	}
}

func TestWriteProductEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteProduct(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"brainlife": []`)) {
		t.Errorf("nil diagnostics should serialize as an empty list, got %s", buf.String())
	}
}

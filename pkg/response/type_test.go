package response_test

import (
	"encoding/json"
	"strings"
	"testing"

	"ai-task-orchestrator/pkg/response"
)

func TestRespMarshal(t *testing.T) {
	t.Run("Empty payload omits data and errors", func(t *testing.T) {
		b, err := json.Marshal(response.Resp{Message: "Success"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s := string(b)
		if strings.Contains(s, `"data"`) || strings.Contains(s, `"errors"`) {
			t.Errorf("expected data and errors omitted, got %s", s)
		}
		if !strings.Contains(s, `"error_code":0`) {
			t.Errorf("expected error_code always present, got %s", s)
		}
	})

	t.Run("Data survives round trip", func(t *testing.T) {
		b, _ := json.Marshal(response.NewOKResp(map[string]string{"sessionId": "s1"}))

		var decoded response.Resp
		if err := json.Unmarshal(b, &decoded); err != nil {
			t.Fatalf("unmarshal error: %v", err)
		}
		dMap, ok := decoded.Data.(map[string]interface{})
		if !ok || dMap["sessionId"] != "s1" {
			t.Errorf("unexpected data payload: %v", decoded.Data)
		}
	})
}

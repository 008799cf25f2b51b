package convlog

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		ev            rawEvent
		declaredRole  string
		hasToolResult bool
		want          Role
	}{
		{"file history wins", rawEvent{Type: "file-history-snapshot"}, "", false, RoleFileHistory},
		{"summary wins", rawEvent{Type: "summary"}, "", false, RoleSummary},
		{"user stays user", rawEvent{Type: "user"}, "user", false, RoleUser},
		{"assistant stays assistant", rawEvent{Type: "assistant"}, "assistant", false, RoleAssistant},
		{"tool result overrides user tag", rawEvent{Type: "user"}, "user", true, RoleTool},
		{"assistant never becomes tool", rawEvent{Type: "assistant"}, "assistant", true, RoleAssistant},
		{"missing role falls back to event type", rawEvent{Type: "user"}, "", false, RoleUser},
		{"unknown type defaults to user", rawEvent{Type: "queue-operation"}, "", false, RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(&tt.ev, tt.declaredRole, tt.hasToolResult); got != tt.want {
				t.Errorf("classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

package convlog

// classify decides the normalized role for one raw event. Rules, in
// priority order:
//
//  1. file-history-snapshot events become RoleFileHistory.
//  2. summary events become RoleSummary.
//  3. a user-tagged event that carries a tool result (a tool_result content
//     block or a toolUseResult sidecar) is reclassified as RoleTool. The
//     log format emits tool results under the same role tag as user input,
//     so this override is mandatory.
//  4. otherwise the declared message role is used verbatim.
//
// Malformed or empty content never raises; such events default to the
// declared role (or the event type when no role survives decoding).
func classify(ev *rawEvent, declaredRole string, hasToolResult bool) Role {
	switch ev.Type {
	case "file-history-snapshot":
		return RoleFileHistory
	case "summary":
		return RoleSummary
	}

	role := declaredRole
	if role == "" {
		role = ev.Type
	}

	if role == "user" && hasToolResult {
		return RoleTool
	}

	switch role {
	case "assistant":
		return RoleAssistant
	default:
		return RoleUser
	}
}

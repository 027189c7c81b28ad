// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transcript

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Record types recognized in a transcript line.
const (
	TypeUser           = "user"
	TypeAssistant      = "assistant"
	TypeToolResult     = "tool_result"
	TypeCommandMessage = "command-message"
)

// Content block types.
const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// Fields is a decoded JSON object. Each accessor returns a fixed default when
// the key is absent or holds a value of a different JSON type.
type Fields map[string]json.RawMessage

// GetString returns the string at key, or "".
func (f Fields) GetString(key string) string {
	var s string
	if raw, ok := f[key]; ok && json.Unmarshal(raw, &s) == nil {
		return s
	}
	return ""
}

// GetBool returns the boolean at key, or false.
// Only a JSON true counts; truthy strings and numbers read as false.
func (f Fields) GetBool(key string) bool {
	var b bool
	if raw, ok := f[key]; ok && json.Unmarshal(raw, &b) == nil {
		return b
	}
	return false
}

// GetList returns the elements of the array at key, or nil.
func (f Fields) GetList(key string) []json.RawMessage {
	var list []json.RawMessage
	if raw, ok := f[key]; ok && json.Unmarshal(raw, &list) == nil {
		return list
	}
	return nil
}

// GetRaw returns the undecoded value at key, or nil when absent.
func (f Fields) GetRaw(key string) json.RawMessage {
	return f[key]
}

// decodeFields decodes data as a JSON object. It returns false for any other
// JSON value, including null.
func decodeFields(data []byte) (Fields, bool) {
	var f Fields
	if err := json.Unmarshal(data, &f); err != nil || f == nil {
		return nil, false
	}
	return f, true
}

// Block is one element of a record's content. The set of implementations is
// closed: TextBlock, ToolUseBlock, ToolResultBlock and IgnoredBlock.
type Block interface {
	isBlock()
}

// TextBlock is plain text, from a "text" block or a bare string element.
type TextBlock struct {
	Text string
}

// ToolUseBlock is a tool invocation. Input holds the raw JSON arguments and
// is nil when the block has none.
type ToolUseBlock struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ToolResultBlock is the output of a tool invocation. Content is either a
// string or an array of sub-blocks; it is nil when absent.
type ToolResultBlock struct {
	ToolUseID string
	Content   json.RawMessage
	IsError   bool
}

// IgnoredBlock is any block whose type is not rendered (thinking, image, ...).
type IgnoredBlock struct {
	Type string
}

func (TextBlock) isBlock()       {}
func (ToolUseBlock) isBlock()    {}
func (ToolResultBlock) isBlock() {}
func (IgnoredBlock) isBlock()    {}

// Record is one parsed transcript line. The set of implementations is closed:
// UserRecord, AssistantRecord, ToolResultRecord, CommandMessageRecord and
// IgnoredRecord.
type Record interface {
	// Type returns the record's type discriminator.
	Type() string
	isRecord()
}

// UserRecord is a message typed by the user.
type UserRecord struct {
	Content []Block
}

// AssistantRecord is a model turn: text and tool calls.
type AssistantRecord struct {
	Content []Block
}

// ToolResultRecord carries tool outputs fed back to the model.
type ToolResultRecord struct {
	Content []Block
}

// CommandMessageRecord is a system message emitted by a slash command.
type CommandMessageRecord struct {
	Content string
}

// IgnoredRecord is any line whose type is not rendered. Kind holds the
// original discriminator, empty when the line had none.
type IgnoredRecord struct {
	Kind string
}

func (UserRecord) Type() string           { return TypeUser }
func (AssistantRecord) Type() string      { return TypeAssistant }
func (ToolResultRecord) Type() string     { return TypeToolResult }
func (CommandMessageRecord) Type() string { return TypeCommandMessage }
func (r IgnoredRecord) Type() string      { return r.Kind }

func (UserRecord) isRecord()           {}
func (AssistantRecord) isRecord()      {}
func (ToolResultRecord) isRecord()     {}
func (CommandMessageRecord) isRecord() {}
func (IgnoredRecord) isRecord()        {}

// ParseRecord decodes one transcript line. It returns an error only when the
// line is not valid JSON. Valid JSON that is not an object, or an object of an
// unknown type, decodes as an IgnoredRecord.
func ParseRecord(line []byte) (Record, error) {
	var f Fields
	if err := json.Unmarshal(line, &f); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return IgnoredRecord{}, nil
		}
		return nil, err
	}
	if f == nil {
		return IgnoredRecord{}, nil
	}

	switch kind := f.GetString("type"); kind {
	case TypeUser:
		return UserRecord{Content: parseContent(f.GetRaw("content"))}, nil
	case TypeAssistant:
		return AssistantRecord{Content: parseContent(f.GetRaw("content"))}, nil
	case TypeToolResult:
		return ToolResultRecord{Content: parseContent(f.GetRaw("content"))}, nil
	case TypeCommandMessage:
		return CommandMessageRecord{Content: payloadText(f.GetRaw("content"))}, nil
	default:
		return IgnoredRecord{Kind: kind}, nil
	}
}

// parseContent decodes a content field. A bare string is one TextBlock; an
// array yields one block per element; anything else yields no blocks.
func parseContent(raw json.RawMessage) []Block {
	var s string
	if len(raw) > 0 && json.Unmarshal(raw, &s) == nil && !isNull(raw) {
		return []Block{TextBlock{Text: s}}
	}

	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		return nil
	}
	blocks := make([]Block, 0, len(items))
	for _, item := range items {
		blocks = append(blocks, parseBlock(item))
	}
	return blocks
}

func parseBlock(raw json.RawMessage) Block {
	var s string
	if json.Unmarshal(raw, &s) == nil && !isNull(raw) {
		return TextBlock{Text: s}
	}

	f, ok := decodeFields(raw)
	if !ok {
		return IgnoredBlock{}
	}
	switch kind := f.GetString("type"); kind {
	case BlockText:
		return TextBlock{Text: f.GetString("text")}
	case BlockToolUse:
		return ToolUseBlock{
			ID:    f.GetString("id"),
			Name:  f.GetString("name"),
			Input: f.GetRaw("input"),
		}
	case BlockToolResult:
		return ToolResultBlock{
			ToolUseID: f.GetString("tool_use_id"),
			Content:   f.GetRaw("content"),
			IsError:   f.GetBool("is_error"),
		}
	default:
		return IgnoredBlock{Type: kind}
	}
}

// payloadText renders a loosely typed payload as text: strings verbatim,
// null or absent as "", and anything else as compact JSON.
func payloadText(raw json.RawMessage) string {
	if len(raw) == 0 || isNull(raw) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

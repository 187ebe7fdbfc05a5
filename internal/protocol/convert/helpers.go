package convert

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/palemoky/wudi/internal/protocol"
)

// --- ChangeEvent conversion ---

// EventToStruct 将 ChangeEvent 转换为 structpb.Struct。
// at 以 protobuf Timestamp 的 JSON 形式（RFC 3339）保存
func EventToStruct(e protocol.ChangeEvent) (*structpb.Struct, error) {
	at, err := protojson.Marshal(timestamppb.New(e.At))
	if err != nil {
		return nil, fmt.Errorf("编码时间失败: %w", err)
	}
	var atText string
	if err := json.Unmarshal(at, &atText); err != nil {
		return nil, fmt.Errorf("编码时间失败: %w", err)
	}

	fields := map[string]*structpb.Value{
		"op":         structpb.NewStringValue(string(e.Op)),
		"collection": structpb.NewStringValue(e.Collection),
		"id":         structpb.NewStringValue(e.ID),
		"at":         structpb.NewStringValue(atText),
	}

	if len(e.Record) > 0 {
		var record any
		if err := json.Unmarshal(e.Record, &record); err != nil {
			return nil, fmt.Errorf("解析记录失败: %w", err)
		}
		v, err := structpb.NewValue(record)
		if err != nil {
			return nil, fmt.Errorf("转换记录失败: %w", err)
		}
		fields["record"] = v
	}

	return &structpb.Struct{Fields: fields}, nil
}

// StructToEvent 将 structpb.Struct 转换回 ChangeEvent
func StructToEvent(s *structpb.Struct) (protocol.ChangeEvent, error) {
	fields := s.GetFields()
	e := protocol.ChangeEvent{
		Op:         protocol.Op(fields["op"].GetStringValue()),
		Collection: fields["collection"].GetStringValue(),
		ID:         fields["id"].GetStringValue(),
	}
	if !e.Op.Valid() {
		return protocol.ChangeEvent{}, fmt.Errorf("未知的变更类型: %q", e.Op)
	}

	if atText := fields["at"].GetStringValue(); atText != "" {
		quoted, err := json.Marshal(atText)
		if err != nil {
			return protocol.ChangeEvent{}, err
		}
		var ts timestamppb.Timestamp
		if err := protojson.Unmarshal(quoted, &ts); err != nil {
			return protocol.ChangeEvent{}, fmt.Errorf("解析时间失败: %w", err)
		}
		e.At = ts.AsTime()
	}

	if record, ok := fields["record"]; ok {
		raw, err := json.Marshal(record.AsInterface())
		if err != nil {
			return protocol.ChangeEvent{}, fmt.Errorf("编码记录失败: %w", err)
		}
		e.Record = raw
	}
	return e, nil
}

// Package snapshot は名簿とスキャン記録を state.Gateway に保存する際の JSON スキーマを扱います。
//
// 保存形式は schema_version 付きのエンベロープです。旧アプリが書き込んだ
// エンベロープなしの配列 / オブジェクト (バージョン 0) も読み込めます。
package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/ogurasousui/pin-roster/internal/core/employee"
	"github.com/ogurasousui/pin-roster/internal/core/state"
)

// SchemaVersion は書き込み時のスキーマバージョンです。
const SchemaVersion = 1

var (
	// ErrInvalidDocument は保存内容がスキーマに合致しない場合に返却されます。
	ErrInvalidDocument = errors.New("snapshot: invalid document")
	// ErrUnsupportedVersion は未知のスキーマバージョンを読み込んだ場合に返却されます。
	ErrUnsupportedVersion = errors.New("snapshot: unsupported schema version")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type rosterDocument struct {
	SchemaVersion int              `json:"schema_version"`
	Users         []employeeRecord `json:"users"`
}

type employeeRecord struct {
	ID       recordID `json:"id"`
	Name     string   `json:"name"`
	Position string   `json:"position"`
	Code     string   `json:"code"`
}

type ledgerDocument struct {
	SchemaVersion int            `json:"schema_version"`
	Counts        map[string]int `json:"counts"`
}

// recordID は文字列 ID と旧形式の数値 ID (作成時刻のミリ秒) の両方を受け付けます。
type recordID string

func (id *recordID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = recordID(s)
		return nil
	}

	raw := string(b)
	if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
		return fmt.Errorf("%w: id %s is neither string nor integer", ErrInvalidDocument, raw)
	}
	*id = recordID(raw)
	return nil
}

// RosterStore は employee.Store の実装です。
type RosterStore struct {
	gw state.Gateway
}

// NewRosterStore は RosterStore を生成します。
func NewRosterStore(gw state.Gateway) *RosterStore {
	return &RosterStore{gw: gw}
}

// LoadRoster は名簿を読み込みます。
func (s *RosterStore) LoadRoster(ctx context.Context) ([]employee.Employee, error) {
	blob, found, err := s.gw.Load(ctx, state.KeyUsers)
	if err != nil {
		return nil, state.Wrap("load", state.KeyUsers, err)
	}
	if !found {
		return []employee.Employee{}, nil
	}

	roster, err := DecodeRoster(blob)
	if err != nil {
		return nil, state.Wrap("decode", state.KeyUsers, err)
	}
	return roster, nil
}

// SaveRoster は名簿を上書き保存します。
func (s *RosterStore) SaveRoster(ctx context.Context, roster []employee.Employee) error {
	blob, err := EncodeRoster(roster)
	if err != nil {
		return state.Wrap("encode", state.KeyUsers, err)
	}
	return state.Wrap("save", state.KeyUsers, s.gw.Save(ctx, state.KeyUsers, blob))
}

// LedgerStore は ledger.Store の実装です。
type LedgerStore struct {
	gw state.Gateway
}

// NewLedgerStore は LedgerStore を生成します。
func NewLedgerStore(gw state.Gateway) *LedgerStore {
	return &LedgerStore{gw: gw}
}

// LoadCounts はスキャン回数を読み込みます。
func (s *LedgerStore) LoadCounts(ctx context.Context) (map[string]int, error) {
	blob, found, err := s.gw.Load(ctx, state.KeyScanLog)
	if err != nil {
		return nil, state.Wrap("load", state.KeyScanLog, err)
	}
	if !found {
		return map[string]int{}, nil
	}

	counts, err := DecodeCounts(blob)
	if err != nil {
		return nil, state.Wrap("decode", state.KeyScanLog, err)
	}
	return counts, nil
}

// SaveCounts はスキャン回数を上書き保存します。
func (s *LedgerStore) SaveCounts(ctx context.Context, counts map[string]int) error {
	blob, err := EncodeCounts(counts)
	if err != nil {
		return state.Wrap("encode", state.KeyScanLog, err)
	}
	return state.Wrap("save", state.KeyScanLog, s.gw.Save(ctx, state.KeyScanLog, blob))
}

// EncodeRoster は名簿を現行スキーマの JSON にします。
func EncodeRoster(roster []employee.Employee) ([]byte, error) {
	doc := rosterDocument{SchemaVersion: SchemaVersion, Users: make([]employeeRecord, 0, len(roster))}
	for _, e := range roster {
		doc.Users = append(doc.Users, employeeRecord{
			ID:       recordID(e.ID),
			Name:     e.Name,
			Position: string(e.Position),
			Code:     e.Code,
		})
	}
	return json.Marshal(doc)
}

// DecodeRoster は名簿 JSON を検証しつつ読み込みます。
func DecodeRoster(blob []byte) ([]employee.Employee, error) {
	trimmed := bytes.TrimSpace(blob)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidDocument)
	}

	var records []employeeRecord
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	case '{':
		var doc rosterDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		if doc.SchemaVersion != SchemaVersion {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.SchemaVersion)
		}
		records = doc.Users
	default:
		return nil, fmt.Errorf("%w: unexpected payload", ErrInvalidDocument)
	}

	roster := make([]employee.Employee, 0, len(records))
	for i, r := range records {
		emp := employee.Employee{
			ID:       string(r.ID),
			Name:     strings.TrimSpace(r.Name),
			Position: employee.Position(r.Position),
			Code:     r.Code,
		}
		if err := validateEmployee(emp); err != nil {
			return nil, fmt.Errorf("%w: users[%d]: %v", ErrInvalidDocument, i, err)
		}
		roster = append(roster, emp)
	}
	return roster, nil
}

// EncodeCounts はスキャン回数を現行スキーマの JSON にします。
func EncodeCounts(counts map[string]int) ([]byte, error) {
	if counts == nil {
		counts = map[string]int{}
	}
	return json.Marshal(ledgerDocument{SchemaVersion: SchemaVersion, Counts: counts})
}

// DecodeCounts はスキャン回数 JSON を検証しつつ読み込みます。
func DecodeCounts(blob []byte) (map[string]int, error) {
	trimmed := bytes.TrimSpace(blob)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: expected object", ErrInvalidDocument)
	}

	var fields map[string]jsoniter.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var counts map[string]int
	if _, versioned := fields["schema_version"]; versioned {
		var doc ledgerDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		if doc.SchemaVersion != SchemaVersion {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.SchemaVersion)
		}
		counts = doc.Counts
	} else if err := json.Unmarshal(trimmed, &counts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	out := make(map[string]int, len(counts))
	for code, n := range counts {
		if code == "" {
			return nil, fmt.Errorf("%w: empty code", ErrInvalidDocument)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative count for %q", ErrInvalidDocument, code)
		}
		out[code] = n
	}
	return out, nil
}

func validateEmployee(e employee.Employee) error {
	switch {
	case e.ID == "":
		return errors.New("missing id")
	case e.Name == "":
		return errors.New("missing name")
	case !e.Position.IsValid():
		return fmt.Errorf("unknown position %q", e.Position)
	case !employee.ValidCode(e.Code):
		return fmt.Errorf("malformed code %q", e.Code)
	}
	return nil
}

// Package sqlite persists sessions, message logs and memory facts in a
// single SQLite database via GORM with the WASM-based ncruces driver, so no
// cgo toolchain is required. Embeddings and structured message fields are
// stored as JSON columns; similarity search loads embedded rows and ranks
// them in process with the vector package.
package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mindkeep-ai/mindkeep/core"
	"github.com/mindkeep-ai/mindkeep/vector"
)

type sessionRow struct {
	ID      string `gorm:"primaryKey"`
	Title   string
	Summary string
	Created time.Time
	Updated time.Time
}

func (sessionRow) TableName() string { return "sessions" }

type messageRow struct {
	Seq        uint64 `gorm:"primaryKey;autoIncrement"`
	SessionID  string `gorm:"index"`
	MessageID  string
	Role       string
	Content    string
	ToolCalls  datatypes.JSON
	ToolCallID string
	Name       string
	Images     datatypes.JSON
	Embedding  datatypes.JSON
	CreatedAt  time.Time
}

func (messageRow) TableName() string { return "messages" }

type factRow struct {
	Key       string `gorm:"primaryKey"`
	Content   string
	Embedding datatypes.JSON
	UpdatedAt time.Time
}

func (factRow) TableName() string { return "memory_facts" }

// DB is a handle to an open database. It hands out the typed stores, which
// all share the same underlying connection.
type DB struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and migrates the schema.
// Migration is idempotent, so concurrent processes opening the same file are
// safe.
func Open(path string) (*DB, error) {
	db, err := gorm.Open(gormlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&sessionRow{}, &messageRow{}, &factRow{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Sessions returns the session store backed by this database.
func (d *DB) Sessions() *SessionStore { return &SessionStore{db: d.db} }

// Messages returns the message store backed by this database.
func (d *DB) Messages() *MessageStore { return &MessageStore{db: d.db} }

// Memories returns the memory fact store backed by this database.
func (d *DB) Memories() *MemoryStore { return &MemoryStore{db: d.db} }

// Close closes the underlying connection.
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SessionStore implements core.SessionStore on the sessions table.
type SessionStore struct {
	db *gorm.DB
}

func (s *SessionStore) Create(ctx context.Context, id string) (*core.Session, error) {
	if id == "" {
		id = core.NewID()
	}
	now := time.Now().UTC()
	row := sessionRow{ID: id, Created: now, Updated: now}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &core.Session{ID: row.ID, Created: row.Created, Updated: row.Updated}, nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*core.Session, error) {
	var row sessionRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &core.Session{
		ID:      row.ID,
		Title:   row.Title,
		Summary: row.Summary,
		Created: row.Created,
		Updated: row.Updated,
	}, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&sessionRow{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete session: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return core.ErrNotFound
		}
		if err := tx.Delete(&messageRow{}, "session_id = ?", id).Error; err != nil {
			return fmt.Errorf("delete session messages: %w", err)
		}
		return nil
	})
}

// MessageStore implements core.MessageStore on the messages table. Append
// order is preserved by the autoincrementing seq column.
type MessageStore struct {
	db *gorm.DB
}

func (s *MessageStore) Append(ctx context.Context, sessionID string, msg core.Message) error {
	row, err := toMessageRow(sessionID, msg)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	s.db.WithContext(ctx).Model(&sessionRow{}).
		Where("id = ?", sessionID).
		Update("updated", time.Now().UTC())
	return nil
}

func (s *MessageStore) Messages(ctx context.Context, sessionID string) ([]core.Message, error) {
	var rows []messageRow
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("seq asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	messages := make([]core.Message, 0, len(rows))
	for _, row := range rows {
		msg, err := fromMessageRow(row)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (s *MessageStore) TruncateFrom(ctx context.Context, sessionID string, index int) error {
	if index < 0 {
		return core.ErrNotFound
	}
	var row messageRow
	err := s.db.WithContext(ctx).
		Select("seq").
		Where("session_id = ?", sessionID).
		Order("seq asc").
		Offset(index).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("locate truncation point: %w", err)
	}
	err = s.db.WithContext(ctx).
		Where("session_id = ? AND seq >= ?", sessionID, row.Seq).
		Delete(&messageRow{}).Error
	if err != nil {
		return fmt.Errorf("truncate messages: %w", err)
	}
	return nil
}

func (s *MessageStore) Search(ctx context.Context, sessionID string, embedding []float32, limit int) ([]core.ScoredMessage, error) {
	if limit <= 0 {
		limit = core.DefaultMessageSearchLimit
	}
	var rows []messageRow
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND role IN ? AND embedding IS NOT NULL", sessionID, []string{string(core.RoleUser), string(core.RoleAssistant)}).
		Order("seq asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load embedded messages: %w", err)
	}

	candidates := make([]core.Message, 0, len(rows))
	embeddings := make([][]float32, 0, len(rows))
	for _, row := range rows {
		msg, err := fromMessageRow(row)
		if err != nil {
			return nil, err
		}
		if msg.Embedding == nil {
			continue
		}
		candidates = append(candidates, msg)
		embeddings = append(embeddings, msg.Embedding)
	}

	ranked, err := vector.Rank(embedding, embeddings, limit)
	if err != nil {
		return nil, err
	}
	results := make([]core.ScoredMessage, len(ranked))
	for i, r := range ranked {
		results[i] = core.ScoredMessage{Message: candidates[r.Index], Score: r.Score}
	}
	return results, nil
}

// MemoryStore implements core.MemoryStore on the memory_facts table. Saving
// an existing key is an upsert.
type MemoryStore struct {
	db *gorm.DB
}

func (s *MemoryStore) Save(ctx context.Context, fact core.MemoryFact) error {
	if fact.UpdatedAt.IsZero() {
		fact.UpdatedAt = time.Now().UTC()
	}
	row := factRow{Key: fact.Key, Content: fact.Content, UpdatedAt: fact.UpdatedAt}
	if fact.Embedding != nil {
		data, err := json.Marshal(fact.Embedding)
		if err != nil {
			return fmt.Errorf("encode embedding: %w", err)
		}
		row.Embedding = data
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save memory: %w", err)
	}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (*core.MemoryFact, error) {
	var row factRow
	err := s.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get memory: %w", err)
	}
	fact, err := fromFactRow(row)
	if err != nil {
		return nil, err
	}
	return &fact, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	res := s.db.WithContext(ctx).Delete(&factRow{}, "key = ?", key)
	if res.Error != nil {
		return fmt.Errorf("delete memory: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *MemoryStore) Recent(ctx context.Context, limit int) ([]core.MemoryFact, error) {
	query := s.db.WithContext(ctx).Order("updated_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []factRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	facts := make([]core.MemoryFact, 0, len(rows))
	for _, row := range rows {
		fact, err := fromFactRow(row)
		if err != nil {
			return nil, err
		}
		facts = append(facts, fact)
	}
	return facts, nil
}

func (s *MemoryStore) Search(ctx context.Context, embedding []float32, limit int) ([]core.ScoredFact, error) {
	if limit <= 0 {
		limit = core.DefaultFactSearchLimit
	}
	var rows []factRow
	err := s.db.WithContext(ctx).
		Where("embedding IS NOT NULL").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load embedded memories: %w", err)
	}

	// Key order keeps tie-breaking deterministic across queries.
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })

	candidates := make([]core.MemoryFact, 0, len(rows))
	embeddings := make([][]float32, 0, len(rows))
	for _, row := range rows {
		fact, err := fromFactRow(row)
		if err != nil {
			return nil, err
		}
		if fact.Embedding == nil {
			continue
		}
		candidates = append(candidates, fact)
		embeddings = append(embeddings, fact.Embedding)
	}

	ranked, err := vector.Rank(embedding, embeddings, limit)
	if err != nil {
		return nil, err
	}
	results := make([]core.ScoredFact, len(ranked))
	for i, r := range ranked {
		results[i] = core.ScoredFact{Fact: candidates[r.Index], Score: r.Score}
	}
	return results, nil
}

func toMessageRow(sessionID string, msg core.Message) (*messageRow, error) {
	row := &messageRow{
		SessionID:  sessionID,
		MessageID:  msg.ID,
		Role:       string(msg.Role),
		Content:    msg.Content,
		ToolCallID: msg.ToolCallID,
		Name:       msg.Name,
		CreatedAt:  msg.CreatedAt,
	}
	if len(msg.ToolCalls) > 0 {
		data, err := json.Marshal(msg.ToolCalls)
		if err != nil {
			return nil, fmt.Errorf("encode tool calls: %w", err)
		}
		row.ToolCalls = data
	}
	if len(msg.Images) > 0 {
		data, err := json.Marshal(msg.Images)
		if err != nil {
			return nil, fmt.Errorf("encode images: %w", err)
		}
		row.Images = data
	}
	if msg.Embedding != nil {
		data, err := json.Marshal(msg.Embedding)
		if err != nil {
			return nil, fmt.Errorf("encode embedding: %w", err)
		}
		row.Embedding = data
	}
	return row, nil
}

func fromMessageRow(row messageRow) (core.Message, error) {
	msg := core.Message{
		ID:         row.MessageID,
		Role:       core.Role(row.Role),
		Content:    row.Content,
		ToolCallID: row.ToolCallID,
		Name:       row.Name,
		CreatedAt:  row.CreatedAt,
	}
	if len(row.ToolCalls) > 0 {
		if err := json.Unmarshal(row.ToolCalls, &msg.ToolCalls); err != nil {
			return core.Message{}, fmt.Errorf("decode tool calls: %w", err)
		}
	}
	if len(row.Images) > 0 {
		if err := json.Unmarshal(row.Images, &msg.Images); err != nil {
			return core.Message{}, fmt.Errorf("decode images: %w", err)
		}
	}
	if len(row.Embedding) > 0 {
		if err := json.Unmarshal(row.Embedding, &msg.Embedding); err != nil {
			return core.Message{}, fmt.Errorf("decode embedding: %w", err)
		}
	}
	return msg, nil
}

func fromFactRow(row factRow) (core.MemoryFact, error) {
	fact := core.MemoryFact{Key: row.Key, Content: row.Content, UpdatedAt: row.UpdatedAt}
	if len(row.Embedding) > 0 {
		if err := json.Unmarshal(row.Embedding, &fact.Embedding); err != nil {
			return core.MemoryFact{}, fmt.Errorf("decode embedding: %w", err)
		}
	}
	return fact, nil
}

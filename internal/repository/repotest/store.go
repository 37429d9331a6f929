// Package repotest provides in-memory repositories sharing one transactional
// store, for service and transport tests that run without PostgreSQL.
package repotest

import (
	"bytes"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/stock-manager/internal/model"
	"github.com/tuanvumaihuynh/stock-manager/internal/repository"
	"github.com/tuanvumaihuynh/stock-manager/internal/storage/db"
)

// OutboxMsg is an outbox row as kept by the store.
type OutboxMsg struct {
	ID        uuid.UUID
	Params    repository.CreateOutboxMsgParams
	Processed bool
	Error     *string
}

// Store is an in-memory database. WithTx serialises transactions and rolls
// back every change made by a failing transaction function. Only WithTx of
// the db.DB interface is implemented.
type Store struct {
	db.DB

	txMu sync.Mutex
	mu   sync.Mutex

	products   map[uuid.UUID]model.Product
	categories map[uuid.UUID]model.Category
	history    []model.HistoryEntry
	outbox     []OutboxMsg

	// FailHistoryInsert and FailOutboxInsert, when set, are returned by the
	// corresponding create methods to simulate a failing second write.
	FailHistoryInsert error
	FailOutboxInsert  error
}

func NewStore() *Store {
	return &Store{
		products:   map[uuid.UUID]model.Product{},
		categories: map[uuid.UUID]model.Category{},
	}
}

type snapshot struct {
	products   map[uuid.UUID]model.Product
	categories map[uuid.UUID]model.Category
	history    []model.HistoryEntry
	outbox     []OutboxMsg
}

func (s *Store) WithTx(ctx context.Context, txFunc func(db.DB) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := snapshot{
		products:   maps.Clone(s.products),
		categories: maps.Clone(s.categories),
		history:    slices.Clone(s.history),
		outbox:     slices.Clone(s.outbox),
	}
	s.mu.Unlock()

	if err := txFunc(txHandle{s}); err != nil {
		s.mu.Lock()
		s.products = snap.products
		s.categories = snap.categories
		s.history = snap.history
		s.outbox = snap.outbox
		s.mu.Unlock()
		return err
	}

	return nil
}

// txHandle is passed to transaction functions; nested WithTx calls join the
// running transaction.
type txHandle struct {
	*Store
}

func (t txHandle) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	return txFunc(t)
}

// Seeding and inspection helpers.

func (s *Store) PutCategory(c model.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
}

func (s *Store) PutProduct(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *Store) Product(id uuid.UUID) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

// History returns entries in insertion order.
func (s *Store) History() []model.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

func (s *Store) Outbox() []OutboxMsg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.outbox)
}

func (s *Store) ProductRepository() repository.ProductRepository {
	return productRepo{s}
}

func (s *Store) CategoryRepository() repository.CategoryRepository {
	return categoryRepo{s}
}

func (s *Store) HistoryRepository() repository.HistoryRepository {
	return historyRepo{s}
}

func (s *Store) OutboxMsgRepository() repository.OutboxMsgRepository {
	return outboxRepo{s}
}

func compareUUIDDesc(a, b uuid.UUID) int {
	return bytes.Compare(b[:], a[:])
}

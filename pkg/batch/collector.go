// Copyright 2025 Certen Protocol
//
// Batch Collector - Groups accepted update_trixel calls into Merkle-provable
// batches so a lightweight client can later request a compact inclusion
// proof that a specific update was accepted, without re-querying the full
// ancestor chain.

package batch

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/certen/independant-validator/pkg/merkle"
)

// UpdateRecord is one accepted update_trixel call, as handed to the
// collector by the server layer after the pipeline call succeeds.
type UpdateRecord struct {
	WorldAddr  [32]byte
	TrixelID   uint64
	LeafHash   [32]byte // the leaf's post-update hash (trixel.Record.Hash)
	AcceptedAt time.Time
}

// Collector manages update batching.
type Collector struct {
	mu sync.Mutex

	current   *activeBatch
	closedSeq uint64

	maxBatchSize int
	batchTimeout time.Duration

	logger *log.Logger
}

// activeBatch is a batch being built.
type activeBatch struct {
	batchID   uuid.UUID
	startTime time.Time
	leaves    [][]byte
	records   []UpdateRecord
}

// CollectorConfig holds collector configuration.
type CollectorConfig struct {
	MaxBatchSize int
	BatchTimeout time.Duration
	Logger       *log.Logger
}

// DefaultCollectorConfig returns default configuration.
func DefaultCollectorConfig() *CollectorConfig {
	return &CollectorConfig{
		MaxBatchSize: 1000,
		BatchTimeout: 15 * time.Minute,
		Logger:       log.New(log.Writer(), "[BatchCollector] ", log.LstdFlags),
	}
}

// NewCollector creates a new batch collector.
func NewCollector(cfg *CollectorConfig) *Collector {
	if cfg == nil {
		cfg = DefaultCollectorConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(log.Writer(), "[BatchCollector] ", log.LstdFlags)
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultCollectorConfig().MaxBatchSize
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = DefaultCollectorConfig().BatchTimeout
	}
	return &Collector{
		maxBatchSize: cfg.MaxBatchSize,
		batchTimeout: cfg.BatchTimeout,
		logger:       cfg.Logger,
	}
}

// AddUpdateResult is returned when an update is added to the open batch.
type AddUpdateResult struct {
	BatchID    uuid.UUID `json:"batch_id"`
	TreeIndex  int       `json:"tree_index"`
	BatchSize  int       `json:"batch_size"`
	BatchReady bool      `json:"batch_ready"`
}

// AddUpdate appends an accepted update to the currently open batch, opening
// a new one if none is active.
func (c *Collector) AddUpdate(rec UpdateRecord) *AddUpdateResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		c.current = &activeBatch{
			batchID:   uuid.New(),
			startTime: time.Now(),
		}
		c.logger.Printf("opened batch %s", c.current.batchID)
	}

	idx := len(c.current.leaves)
	leaf := append([]byte{}, rec.LeafHash[:]...)
	c.current.leaves = append(c.current.leaves, leaf)
	c.current.records = append(c.current.records, rec)

	ready := len(c.current.leaves) >= c.maxBatchSize || time.Since(c.current.startTime) >= c.batchTimeout

	return &AddUpdateResult{
		BatchID:    c.current.batchID,
		TreeIndex:  idx,
		BatchSize:  len(c.current.leaves),
		BatchReady: ready,
	}
}

// ClosedBatch is the result of closing a batch: its Merkle root, one
// inclusion proof per accepted update (indexed the same way as the batch's
// leaves), and the same proofs reshaped into portable receipts an external
// verifier can check without this package's tree-internal types.
type ClosedBatch struct {
	BatchID    uuid.UUID                `json:"batch_id"`
	Sequence   uint64                   `json:"sequence"`
	Root       string                   `json:"root"`
	Records    []UpdateRecord           `json:"records"`
	Proofs     []*merkle.InclusionProof `json:"proofs"`
	Receipts   []*merkle.Receipt        `json:"receipts"`
	StartTime  time.Time                `json:"start_time"`
	ClosedTime time.Time                `json:"closed_time"`
}

// Close closes the currently open batch, if any, building its Merkle tree
// and one inclusion proof per record. Returns nil if no batch is open.
func (c *Collector) Close() (*ClosedBatch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || len(c.current.leaves) == 0 {
		c.current = nil
		return nil, nil
	}

	batch := c.current
	c.current = nil
	c.closedSeq++
	seq := c.closedSeq

	tree, err := merkle.BuildTree(batch.leaves)
	if err != nil {
		return nil, fmt.Errorf("build batch merkle tree: %w", err)
	}

	proofs := make([]*merkle.InclusionProof, len(batch.leaves))
	receipts := make([]*merkle.Receipt, len(batch.leaves))
	for i := range batch.leaves {
		proof, err := tree.GenerateProof(i)
		if err != nil {
			return nil, fmt.Errorf("generate proof for index %d: %w", i, err)
		}
		proofs[i] = proof
		receipt, err := merkle.ReceiptFromInclusionProof(proof, seq)
		if err != nil {
			return nil, fmt.Errorf("build receipt for index %d: %w", i, err)
		}
		receipts[i] = receipt
	}

	c.logger.Printf("closed batch %s (seq %d): root=%s records=%d", batch.batchID, seq, tree.RootHex(), len(batch.records))

	return &ClosedBatch{
		BatchID:    batch.batchID,
		Sequence:   seq,
		Root:       tree.RootHex(),
		Records:    batch.records,
		Proofs:     proofs,
		Receipts:   receipts,
		StartTime:  batch.startTime,
		ClosedTime: time.Now(),
	}, nil
}

// ShouldClose reports whether the open batch has exceeded its size or age
// bound.
func (c *Collector) ShouldClose() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return false
	}
	return len(c.current.leaves) >= c.maxBatchSize || time.Since(c.current.startTime) >= c.batchTimeout
}

// Pending reports the size of the currently open batch.
func (c *Collector) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return 0
	}
	return len(c.current.leaves)
}

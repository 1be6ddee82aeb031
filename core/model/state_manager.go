package model

import (
	"sync"

	"github.com/YuminosukeSato/blockscale/pkg/errors"
)

// StateManager は推定器の学習状態をスレッドセーフに管理する。
// 推定器は埋め込みではなくフィールドとして保持する。
type StateManager struct {
	mu        sync.RWMutex
	state     EstimatorState
	nFeatures int
	nSamples  int
}

// NewStateManager は未学習状態の StateManager を返す
func NewStateManager() *StateManager {
	return &StateManager{state: NotFitted}
}

// IsFitted はモデルが学習済みかどうかを返す
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == Fitted
}

// State は現在の状態を返す
func (s *StateManager) State() EstimatorState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// MarkFitted は学習時の次元を記録して学習済み状態にする
func (s *StateManager) MarkFitted(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Fitted
	s.nFeatures = nFeatures
	s.nSamples = nSamples
}

// Reset は未学習状態に戻す
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = NotFitted
	s.nFeatures = 0
	s.nSamples = 0
}

// Dimensions は学習時の特徴量数とサンプル数を返す
func (s *StateManager) Dimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures, s.nSamples
}

// RequireFitted は未学習なら NotFittedError を返す
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// ModelState はモデル状態のスナップショット（ログ・デバッグ用）
type ModelState struct {
	State     string `json:"state"`
	NFeatures int    `json:"n_features,omitempty"`
	NSamples  int    `json:"n_samples,omitempty"`
}

// Snapshot は現在の状態を ModelState として返す
func (s *StateManager) Snapshot() ModelState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ModelState{
		State:     s.state.String(),
		NFeatures: s.nFeatures,
		NSamples:  s.nSamples,
	}
}

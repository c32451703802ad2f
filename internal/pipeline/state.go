package pipeline

import (
	"sync"

	"github.com/iabetor/noticias/internal/logger"
)

// Stage 表示一次运行所处的阶段。
type Stage int

const (
	// StagePending 尚未开始。
	StagePending Stage = iota
	// StageCrawling 正在逐个分类抓取。
	StageCrawling
	// StageSelecting 抓取结束，正在挑选首页。
	StageSelecting
	// StageDone 快照已组装。
	StageDone
	// StageCanceled 运行被取消或超时，剩余分类跳过。
	StageCanceled
)

var stageNames = [...]string{
	"Pending",
	"Crawling",
	"Selecting",
	"Done",
	"Canceled",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "Unknown"
}

// StateMachine 记录运行阶段，线程安全。
type StateMachine struct {
	mu       sync.RWMutex
	current  Stage
	onChange func(from, to Stage)
}

// NewStateMachine 创建初始阶段为 Pending 的状态机。
func NewStateMachine() *StateMachine {
	return &StateMachine{current: StagePending}
}

// SetOnChange 注册阶段变化回调。
func (sm *StateMachine) SetOnChange(fn func(from, to Stage)) {
	sm.mu.Lock()
	sm.onChange = fn
	sm.mu.Unlock()
}

// Current 返回当前阶段。
func (sm *StateMachine) Current() Stage {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}

// Transition 尝试切换阶段。合法转换：
//
//	Pending   → Crawling
//	Crawling  → Selecting | Canceled
//	Canceled  → Selecting  （取消后仍然输出部分快照）
//	Selecting → Done
func (sm *StateMachine) Transition(to Stage) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !validTransition(sm.current, to) {
		logger.Warnf("[pipeline] 非法阶段转换 %s → %s", sm.current, to)
		return false
	}

	from := sm.current
	sm.current = to

	if sm.onChange != nil {
		sm.onChange(from, to)
	}
	return true
}

func validTransition(from, to Stage) bool {
	switch from {
	case StagePending:
		return to == StageCrawling
	case StageCrawling:
		return to == StageSelecting || to == StageCanceled
	case StageCanceled:
		return to == StageSelecting
	case StageSelecting:
		return to == StageDone
	}
	return false
}

package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// SnapshotSource 提供镜像写入所需的完整状态。
type SnapshotSource func() (Snapshot, error)

// Mirror 在每次提交后异步地把完整快照写入一个 JSON 文件。
// 多次通知会合并为一次写入，最后一次写入生效。
type Mirror struct {
	path   string
	source SnapshotSource
	logger *zap.Logger

	signal chan struct{}
	stop   chan struct{}
	done   chan struct{}

	startOnce sync.Once
	closeOnce sync.Once
	writeMu   sync.Mutex
}

// NewMirror 构造 Mirror，需要调用 Start 启动后台写入。
func NewMirror(path string, source SnapshotSource, logger *zap.Logger) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror{
		path:   path,
		source: source,
		logger: logger,
		signal: make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Path 返回镜像文件路径。
func (m *Mirror) Path() string {
	return m.path
}

// Start 启动后台写入协程。
func (m *Mirror) Start() {
	m.startOnce.Do(func() {
		go m.loop()
	})
}

// Notify 实现 ChangeNotifier，不会阻塞调用方。
func (m *Mirror) Notify() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// Flush 同步写入当前状态。
func (m *Mirror) Flush() error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	snap, err := m.source()
	if err != nil {
		return fmt.Errorf("collect snapshot: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create mirror dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".folio-mirror-*.json")
	if err != nil {
		return fmt.Errorf("create temp mirror: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write mirror: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close mirror: %w", err)
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace mirror: %w", err)
	}
	return nil
}

// Close 停止后台协程，并把尚未写入的变更落盘。
func (m *Mirror) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.stop)
		m.startOnce.Do(func() { close(m.done) })
		<-m.done

		select {
		case <-m.signal:
			err = m.Flush()
		default:
		}
	})
	return err
}

func (m *Mirror) loop() {
	defer close(m.done)
	for {
		select {
		case <-m.stop:
			return
		case <-m.signal:
			if err := m.Flush(); err != nil {
				m.logger.Warn("mirror write failed", zap.String("path", m.path), zap.Error(err))
			}
		}
	}
}

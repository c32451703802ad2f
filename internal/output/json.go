// Package output 将快照写入 JSON 文件。
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iabetor/noticias/internal/logger"
	"github.com/iabetor/noticias/internal/news"
)

// Encode 将快照编码为缩进两格的 JSON，保留非 ASCII 字符和 HTML 符号。
func Encode(snap *news.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("序列化快照失败: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile 写入快照，必要时创建父目录。
// 先写同目录临时文件再改名，失败时不会留下半个文件。
func WriteFile(path string, snap *news.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("写入快照失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("写入快照失败: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("设置文件权限失败: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("保存快照失败: %w", err)
	}

	logger.Infof("[output] 已保存: %s (%d 字节)", path, len(data))
	return nil
}

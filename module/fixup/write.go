/*
Copyright © 2020 Marvin

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package fixup

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// 并发安全的脚本文件写入器
// 多 worker 共享清单类文件时串行落盘
type FixupFileWriter struct {
	mutex  sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

func NewFixupFileWriter(filePath string) (*FixupFileWriter, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("create fixup dir [%s] failed: %v", filepath.Dir(filePath), err)
	}
	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("open fixup file [%s] failed: %v", filePath, err)
	}
	return &FixupFileWriter{
		file:   f,
		writer: bufio.NewWriter(f),
	}, nil
}

func (w *FixupFileWriter) WriteString(s string) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	_, err := w.writer.WriteString(s)
	return err
}

func (w *FixupFileWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// 单对象脚本写入，一个对象一个文件，worker 间互不共享
func writeObjectScript(dir, fileName string, content []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create fixup dir [%s] failed: %v", dir, err)
	}
	filePath := filepath.Join(dir, fileName)
	if err := os.WriteFile(filePath, content, 0644); err != nil {
		return "", fmt.Errorf("write fixup script [%s] failed: %v", filePath, err)
	}
	return filePath, nil
}

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ghibli-generator/internal/domain/entities"
	"ghibli-generator/internal/utils"
)

// 命令行参数无法读取时使用的拒绝码，映射为other
const (
	pickerCodeNotFound   = "file-not-found"
	pickerCodeNotRegular = "file-not-regular"
)

// collectCandidates 将命令行参数转换为候选文件，无法读取的参数作为拒绝项返回
func collectCandidates(paths []string) ([]entities.CandidateFile, []entities.PickerRejection) {
	var (
		files      []entities.CandidateFile
		rejections []entities.PickerRejection
	)

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			rejections = append(rejections, entities.PickerRejection{
				File:    entities.CandidateFile{Name: filepath.Base(path)},
				Code:    pickerCodeNotFound,
				Message: fmt.Sprintf("cannot read %s", path),
			})
			continue
		}
		if !info.Mode().IsRegular() {
			rejections = append(rejections, entities.PickerRejection{
				File:    entities.CandidateFile{Name: info.Name()},
				Code:    pickerCodeNotRegular,
				Message: fmt.Sprintf("%s is not a regular file", path),
			})
			continue
		}
		files = append(files, candidateFromPath(path, info))
	}

	return files, rejections
}

func candidateFromPath(path string, info os.FileInfo) entities.CandidateFile {
	return entities.CandidateFile{
		Name:      info.Name(),
		Size:      info.Size(),
		MediaType: utils.DetectMediaType(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

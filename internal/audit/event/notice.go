package event

import (
	"fmt"
	"time"

	"github.com/shandysiswandi/hijackaudit/internal/audit/entity"
)

// Notice asks the auditors of a rejected batch to fix their files and submit
// the whole batch again.
type Notice struct {
	BatchID    string         `json:"batch_id"`
	RejectedAt time.Time      `json:"rejected_at"`
	Summary    string         `json:"summary"`
	ByClass    map[string]int `json:"by_class"`
	Files      []NoticeFile   `json:"files"`
}

type NoticeFile struct {
	File   string `json:"file"`
	Class  string `json:"class"`
	Detail string `json:"detail"`
}

func NewNotice(event entity.BatchRejection) Notice {
	n := Notice{
		BatchID:    event.BatchID,
		RejectedAt: time.Unix(event.RejectedAt, 0).UTC(),
		ByClass:    make(map[string]int),
		Files:      make([]NoticeFile, 0, len(event.Files)),
	}

	for _, f := range event.Files {
		n.ByClass[string(f.Class)]++
		n.Files = append(n.Files, NoticeFile{File: f.FileName, Class: string(f.Class), Detail: f.Detail})
	}
	n.Summary = fmt.Sprintf("%d file(s) rejected; fix them and resubmit the whole batch", len(n.Files))

	return n
}

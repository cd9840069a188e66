package pipeline

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/shandysiswandi/hijackaudit/internal/audit/entity"
)

const testHeader = "Decision,Unique ID,Proof of Affiliation Links"

func csvFile(name string, lines ...string) entity.UploadedFile {
	return entity.UploadedFile{Name: name, Content: []byte(strings.Join(lines, "\n") + "\n")}
}

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// masterTable builds completed records; counts maps decision to row count.
func masterTable(auditor string, decisions ...string) *entity.Table {
	t := &entity.Table{}
	for i, d := range decisions {
		t.Records = append(t.Records, entity.Record{
			Row:           i + 1,
			Decision:      entity.NewString(d),
			UniqueID:      fmt.Sprintf("%s-%d", auditor, i+1),
			ProofLink:     entity.NewString("https://proof.example/" + auditor),
			SourceAuditor: auditor,
		})
	}
	return t
}

func repeat(v string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = v
	}
	return out
}

type rowKey struct {
	auditor string
	row     int
}

func keys(t *entity.Table) []rowKey {
	out := make([]rowKey, 0, t.Len())
	for _, r := range t.Records {
		out = append(out, rowKey{auditor: r.SourceAuditor, row: r.Row})
	}
	return out
}

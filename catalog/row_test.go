package catalog

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccumulatorConcurrentAppends(t *testing.T) {
	a := assert.New(t)
	acc := NewAccumulator()

	const workers = 8
	const rowsPerWorker = 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rowsPerWorker; i++ {
				acc.Append(Row{ReferenceID: fmt.Sprintf("w%d-r%d", w, i)})
			}
		}(w)
	}
	wg.Wait()

	a.Equal(workers*rowsPerWorker, acc.Len())

	seen := make(map[string]bool)
	for _, row := range acc.Rows() {
		a.False(seen[row.ReferenceID], "no row lost or duplicated")
		seen[row.ReferenceID] = true
	}
}

func TestMarshalWritesBOMAndHeader(t *testing.T) {
	a := assert.New(t)

	data, err := Marshal([]Row{{
		Title:       "one.jpg",
		URL:         "https://bucket.example.com/root/f1",
		ReferenceID: "f1",
		ContentType: "Image",
		Category:    "Archive>Staff Drive - Root",
		CreatorID:   "alice@example.com",
		OwnerID:     "Admins",
	}})
	a.NoError(err)

	a.True(strings.HasPrefix(string(data), "\xef\xbb\xbf"), "UTF-8 BOM expected")

	lines := strings.Split(strings.TrimPrefix(string(data), "\xef\xbb\xbf"), "\n")
	a.Equal("*title,description,tags,url,referenceId,contentType,category,metadataProfileId,creatorId,ownerId",
		strings.TrimRight(lines[0], "\r"))
	a.Contains(lines[1], "one.jpg")
	a.Contains(lines[1], "f1")
}

func TestRowsReturnsACopy(t *testing.T) {
	a := assert.New(t)
	acc := NewAccumulator()
	acc.Append(Row{ReferenceID: "f1"})

	rows := acc.Rows()
	rows[0].ReferenceID = "mutated"

	a.Equal("f1", acc.Rows()[0].ReferenceID)
}

package batch

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Utterance is one manifest entry: a transcript to align against a recording.
type Utterance struct {
	ID          string `json:"id"`
	RecordingID string `json:"recording_id"`
	Text        string `json:"text"`
}

// ReadManifest reads a JSON-lines manifest, one Utterance per line.
// Blank lines are skipped.
func ReadManifest(r io.Reader) ([]Utterance, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	var utts []Utterance
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var u Utterance
		if err := json.Unmarshal([]byte(line), &u); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if u.ID == "" {
			return nil, fmt.Errorf("line %d: missing id", lineNum)
		}
		if err := checkPathElem(u.ID); err != nil {
			return nil, fmt.Errorf("line %d: id: %w", lineNum, err)
		}
		if err := checkPathElem(u.RecordingID); err != nil {
			return nil, fmt.Errorf("line %d: recording_id: %w", lineNum, err)
		}
		utts = append(utts, u)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return utts, nil
}

// checkPathElem rejects ids that would not stay a single element below the
// output directory.
func checkPathElem(id string) error {
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("%q is not a valid path element", id)
	}
	return nil
}

// ReadManifestFile is a convenience wrapper that opens a file path.
func ReadManifestFile(path string) ([]Utterance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadManifest(f)
}

// Job selects one shard of a manifest: utterance i belongs to job
// (i mod Total)+1.
type Job struct {
	ID    int
	Total int
}

// Owns reports whether utterance index i belongs to this job.
func (j Job) Owns(i int) bool {
	return i%j.Total+1 == j.ID
}

func (j Job) String() string {
	return fmt.Sprintf("%d:%d", j.ID, j.Total)
}

// ParseJob parses "id:total" with 1 <= id <= total.
func ParseJob(s string) (Job, error) {
	idStr, totalStr, ok := strings.Cut(s, ":")
	if !ok {
		return Job{}, fmt.Errorf("invalid job %q: want id:total", s)
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return Job{}, fmt.Errorf("invalid job id %q: %w", idStr, err)
	}
	total, err := strconv.Atoi(totalStr)
	if err != nil {
		return Job{}, fmt.Errorf("invalid job total %q: %w", totalStr, err)
	}
	if total < 1 || id < 1 || id > total {
		return Job{}, errors.New("invalid job: need 1 <= id <= total")
	}
	return Job{ID: id, Total: total}, nil
}

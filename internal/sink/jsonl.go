package sink

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jfmyers9/albumlog/internal/album"
)

// JSON-lines documents, one per table. These are the names the dashboard
// reads.
const (
	CurrentFile = "current_album.json"
	HistoryFile = "albums.json"
)

func encodeCurrent(w io.Writer, current album.CurrentNormalized) error {
	return json.NewEncoder(w).Encode(current)
}

func encodeHistory(w io.Writer, rows []album.HistoryRow) error {
	enc := json.NewEncoder(w)
	for i, r := range rows {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

func decodeCurrent(r io.Reader) (album.CurrentNormalized, error) {
	var current album.CurrentNormalized
	dec := json.NewDecoder(r)
	if err := dec.Decode(&current); err != nil {
		if err == io.EOF {
			return current, ErrNoData
		}
		return current, fmt.Errorf("failed to decode %s: %w", CurrentTable, err)
	}
	return current, nil
}

func decodeHistory(r io.Reader) ([]album.HistoryRow, error) {
	rows := []album.HistoryRow{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var row album.HistoryRow
		if err := json.Unmarshal(scanner.Bytes(), &row); err != nil {
			return nil, fmt.Errorf("failed to decode %s line %d: %w", HistoryTable, line, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", HistoryTable, err)
	}
	return rows, nil
}

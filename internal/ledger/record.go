package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"strconv"
)

// A record is one line: index TAB quoted-transcript TAB crc32(index TAB quoted-transcript) LF.
// The quoting keeps tabs and newlines of the transcript out of the framing.

const fieldSep = '\t'

func encodeRecord(index int, transcript string) []byte {
	body := strconv.Itoa(index) + string(fieldSep) + strconv.Quote(transcript)
	return fmt.Appendf(nil, "%s%c%08x\n", body, fieldSep, crc32.ChecksumIEEE([]byte(body)))
}

func decodeRecord(line []byte) (int, string, error) {
	i := bytes.LastIndexByte(line, fieldSep)
	if i < 0 {
		return 0, "", errors.New("missing checksum")
	}
	body, sum := line[:i], line[i+1:]

	want, err := strconv.ParseUint(string(sum), 16, 32)
	if err != nil {
		return 0, "", fmt.Errorf("bad checksum field %q", sum)
	}
	if got := crc32.ChecksumIEEE(body); got != uint32(want) {
		return 0, "", fmt.Errorf("checksum mismatch: got %08x, want %08x", got, want)
	}

	j := bytes.IndexByte(body, fieldSep)
	if j < 0 {
		return 0, "", errors.New("missing transcript field")
	}
	index, err := strconv.Atoi(string(body[:j]))
	if err != nil || index < 0 {
		return 0, "", fmt.Errorf("bad index %q", body[:j])
	}
	transcript, err := strconv.Unquote(string(body[j+1:]))
	if err != nil {
		return 0, "", fmt.Errorf("bad transcript: %w", err)
	}

	return index, transcript, nil
}

// parse returns every valid record of data, the length of the prefix made of complete lines,
// and one error per discarded record. The first record for an index wins.
func parse(data []byte) (map[int]string, int64, []error) {
	entries := make(map[int]string)
	var (
		discarded []error
		valid     int64
		offset    int
		line      int
	)

	for offset < len(data) {
		line++
		nl := bytes.IndexByte(data[offset:], '\n')
		if nl < 0 {
			discarded = append(discarded, &MalformedRecordError{Line: line, Reason: "truncated record"})
			break
		}

		raw := data[offset : offset+nl]
		offset += nl + 1
		valid = int64(offset)

		index, transcript, err := decodeRecord(raw)
		if err != nil {
			discarded = append(discarded, &MalformedRecordError{Line: line, Reason: err.Error()})
			continue
		}
		if _, dup := entries[index]; dup {
			discarded = append(discarded, &MalformedRecordError{
				Line:   line,
				Reason: fmt.Sprintf("duplicate index %d", index),
			})
			continue
		}
		entries[index] = transcript
	}

	return entries, valid, discarded
}

package torrent_info

import (
	"crypto/sha1"
	"fmt"
	"io"
	"net/url"
	"slices"

	"github.com/mertwole/bencode-cli/bencode"
	"github.com/mertwole/bencode-cli/bencode/deserialize"
	"github.com/mertwole/bencode-cli/bencode/value"
)

type TorrentInfo struct {
	Trackers    []*url.URL
	Pieces      [][sha1.Size]byte
	PieceLength int
	TotalLength int
	Name        string
	Files       []FileInfo
	InfoHash    [sha1.Size]byte
}

type FileInfo struct {
	Path   []string
	Length int
}

type bencodeTorrent struct {
	Announce     string      `bencode:"announce"`
	AnnounceList [][]string  `bencode:"announce-list"`
	Info         value.Value `bencode:"info"`
}

type bencodeInfo struct {
	Pieces      []byte             `bencode:"pieces"`
	PieceLength int                `bencode:"piece length"`
	Name        string             `bencode:"name"`
	Files       *[]bencodeFileInfo `bencode:"files"`
	Length      *int               `bencode:"length"`
}

type bencodeFileInfo struct {
	Path   []string `bencode:"path"`
	Length int      `bencode:"length"`
}

func Decode(reader io.Reader, opts ...deserialize.Option) (*TorrentInfo, error) {
	bencodeTorrent := bencodeTorrent{}
	err := bencode.Deserialize(reader, &bencodeTorrent, opts...)
	if err != nil {
		return nil, err
	}

	if bencodeTorrent.Info == nil {
		return nil, fmt.Errorf("missing info dictionary")
	}

	bencodeInfo := bencodeInfo{}
	err = deserialize.Unmarshal(bencodeTorrent.Info, &bencodeInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to parse info dictionary: %w", err)
	}

	trackers := make([]*url.URL, 0)

	if bencodeTorrent.Announce != "" {
		tracker, err := url.Parse(bencodeTorrent.Announce)
		if err != nil {
			return nil, fmt.Errorf("failed to parse announce URL %s: %w", bencodeTorrent.Announce, err)
		}
		trackers = append(trackers, tracker)
	}

	for _, list := range bencodeTorrent.AnnounceList {
		for _, tracker := range list {
			trackerURL, err := url.Parse(tracker)
			if err != nil {
				return nil, fmt.Errorf("failed to parse announce-list URL %s: %w", tracker, err)
			}

			if slices.ContainsFunc(trackers, func(known *url.URL) bool { return known.String() == trackerURL.String() }) {
				continue
			}

			trackers = append(trackers, trackerURL)
		}
	}

	var pieces [][sha1.Size]byte

	for chunk := range slices.Chunk(bencodeInfo.Pieces, sha1.Size) {
		if len(chunk) != sha1.Size {
			return nil, fmt.Errorf("invalid piece hash size: expected %d and got %d", sha1.Size, len(chunk))
		}

		pieces = append(pieces, [sha1.Size]byte(chunk))
	}

	totalLength := 0
	files := make([]FileInfo, 0)
	if bencodeInfo.Files != nil {
		for _, file := range *bencodeInfo.Files {
			totalLength += file.Length
			files = append(files, FileInfo(file))
		}
	} else if bencodeInfo.Length == nil {
		return nil, fmt.Errorf("cannot parse either length or file list")
	} else {
		totalLength = *bencodeInfo.Length
	}

	// Hashed over the canonical encoding of the whole info dictionary,
	// including keys that are not read above.
	infoHash := sha1.Sum(bencode.Encode(bencodeTorrent.Info))

	return &TorrentInfo{
		Trackers:    trackers,
		Pieces:      pieces,
		PieceLength: bencodeInfo.PieceLength,
		TotalLength: totalLength,
		Name:        bencodeInfo.Name,
		Files:       files,
		InfoHash:    infoHash,
	}, nil
}

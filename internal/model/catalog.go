// Package model resolves whisper model identifiers to verified local files,
// downloading and caching them on first use. The cache directory and its JSON
// index are the only durable state the library owns.
package model

import "sort"

// defaultBaseURL is where the ggml model artifacts live.
const defaultBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// CatalogEntry describes one known downloadable model.
type CatalogEntry struct {
	ID        string // catalog key, e.g. "base.en"
	Filename  string // artifact name, e.g. "ggml-base.en.bin"
	SHA256    string // pinned artifact checksum
	SizeLabel string // human-readable size for listings
}

// catalog is the fixed set of known whisper.cpp models. Checksums are pinned
// to the upstream artifacts; a re-uploaded model requires a catalog bump here.
var catalog = []CatalogEntry{
	{"tiny", "ggml-tiny.bin", "be07e048e1e599ad46341c8d2a135645097a538221678b7acdd1b1919c6e1b21", "75 MB"},
	{"tiny.en", "ggml-tiny.en.bin", "921e4cf8686fdd993dcd081a5da5b6c365bfde1162e72b08d75ac75289920b1f", "75 MB"},
	{"base", "ggml-base.bin", "60ed5bc3dd14eea856493d334349b405782ddcaf0028d4b5df4088345fba2efe", "142 MB"},
	{"base.en", "ggml-base.en.bin", "a03779c86df3323075f5e796cb2ce5029f00ec8869eee3fdfb897afe36c6d002", "142 MB"},
	{"small", "ggml-small.bin", "1be3a9b2063867b937e64e2ec7483364a79917e157fa98c5d94b5c1fffea987b", "466 MB"},
	{"small.en", "ggml-small.en.bin", "c6138d6d58ecc8322097e0f987c32f1be8bb0a18532a3f88f734d1bbf9c41e5d", "466 MB"},
	{"medium", "ggml-medium.bin", "6c14d5adee5f86394037b4e4e8b59f1673b6cee10e3cf0b11bbdbee79c156208", "1.5 GB"},
	{"medium.en", "ggml-medium.en.bin", "cc37e93478338ec7700281a7ac30a10128929eb8f427dda2e865faa8f6da4356", "1.5 GB"},
	{"large-v2", "ggml-large-v2.bin", "9a423fe4d40c82774b6af34115b8b935f34152246eb19e80e376071d3f999487", "2.9 GB"},
	{"large-v3", "ggml-large-v3.bin", "64d182b440b98d5203c4f9bd541544d84c605196c4f7b845dfa11fb23594d1e2", "2.9 GB"},
	{"large-v3-turbo", "ggml-large-v3-turbo.bin", "1fc70f774d38eb169993ac391eea357ef47c88757ef72ee5943879b7e8e2bc69", "1.6 GB"},
}

// Known reports whether id names a catalog model.
func Known(id string) bool {
	_, ok := lookup(id)
	return ok
}

// IDs returns the catalog identifiers in listing order.
func IDs() []string {
	ids := make([]string, len(catalog))
	for i, e := range catalog {
		ids[i] = e.ID
	}
	sort.Strings(ids)
	return ids
}

func lookup(id string) (CatalogEntry, bool) {
	for _, e := range catalog {
		if e.ID == id {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

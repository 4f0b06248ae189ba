package anidb

import (
	"regexp"
	"strconv"
)

var numberSuffix = regexp.MustCompile(`(\d+)$`)

// EpisodeNumber extracts the trailing number of an epno.
//
// The number is unique per anime and episode type, not across types:
// "1" and "S1" both yield 1.
func EpisodeNumber(epno string) (int, error) {
	m := numberSuffix.FindStringSubmatch(epno)
	if m == nil {
		return 0, &FormatError{Field: "epno", Value: epno}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, &FormatError{Field: "epno", Value: epno, Err: err}
	}
	return n, nil
}

// Number returns the episode number parsed from EpNo
func (e EpisodeRecord) Number() (int, error) {
	return EpisodeNumber(e.EpNo)
}

// DisplayTitle returns the Japanese title if there is one, otherwise the
// first title in document order.
func (e EpisodeRecord) DisplayTitle() (string, error) {
	if len(e.Titles) == 0 {
		return "", &MissingElementError{Field: "title"}
	}
	for _, t := range e.Titles {
		if t.Lang == "ja" {
			return t.Text, nil
		}
	}
	return e.Titles[0].Text, nil
}

package anidb

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// Attributes named xml:lang are bound through the reserved XML namespace,
// a bare lang attribute does not match.
type xmlTitle struct {
	Text string `xml:",chardata"`
	Type string `xml:"type,attr"`
	Lang string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
}

type xmlAnime struct {
	XMLName      xml.Name     `xml:"anime"`
	ID           *string      `xml:"id,attr"`
	Type         *string      `xml:"type"`
	EpisodeCount *string      `xml:"episodecount"`
	StartDate    *string      `xml:"startdate"`
	EndDate      *string      `xml:"enddate"`
	Titles       *xmlTitles   `xml:"titles"`
	Episodes     *xmlEpisodes `xml:"episodes"`
}

type xmlTitles struct {
	Titles []xmlTitle `xml:"title"`
}

type xmlEpisodes struct {
	Episodes []xmlEpisode `xml:"episode"`
}

type xmlEpisode struct {
	EpNo   *xmlEpNo          `xml:"epno"`
	Length *string           `xml:"length"`
	Titles []xmlEpisodeTitle `xml:"title"`
}

type xmlEpNo struct {
	Text string  `xml:",chardata"`
	Type *string `xml:"type,attr"`
}

type xmlEpisodeTitle struct {
	Text string `xml:",chardata"`
	Lang string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
}

type xmlTitlesDump struct {
	XMLName xml.Name         `xml:"animetitles"`
	Anime   []xmlTitlesAnime `xml:"anime"`
}

type xmlTitlesAnime struct {
	AID    *string    `xml:"aid,attr"`
	Titles []xmlTitle `xml:"title"`
}

type xmlError struct {
	Message string `xml:",chardata"`
}

func newDecoder(doc []byte) *xml.Decoder {
	d := xml.NewDecoder(bytes.NewReader(doc))
	d.CharsetReader = charset.NewReaderLabel
	return d
}

// CheckEnvelope returns a *ServiceError if the document root is <error>.
// Documents that are not XML at all are left for the unpacker to reject.
func CheckEnvelope(doc []byte) error {
	d := newDecoder(doc)
	for {
		tok, err := d.Token()
		if err != nil {
			return nil
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "error" {
			return nil
		}
		var env xmlError
		if err := d.DecodeElement(&env, &start); err != nil {
			return fmt.Errorf("decode error envelope: %w", err)
		}
		return &ServiceError{Message: strings.TrimSpace(env.Message)}
	}
}

// UnpackAnime decodes an anime document from the HTTP API. It rejects the
// <error> envelope itself, for documents that did not come through Client.
func UnpackAnime(doc []byte) (AnimeRecord, error) {
	if err := CheckEnvelope(doc); err != nil {
		return AnimeRecord{}, err
	}
	return decodeAnime(doc)
}

// decodeAnime decodes a document already known not to be an <error> envelope
func decodeAnime(doc []byte) (AnimeRecord, error) {
	var raw xmlAnime
	if err := newDecoder(doc).Decode(&raw); err != nil {
		return AnimeRecord{}, fmt.Errorf("decode anime document: %w", err)
	}

	if raw.ID == nil {
		return AnimeRecord{}, &MissingElementError{Field: "id"}
	}
	aid, err := parseInt("aid", *raw.ID)
	if err != nil {
		return AnimeRecord{}, err
	}
	if raw.Type == nil {
		return AnimeRecord{}, &MissingElementError{Field: "type"}
	}
	if raw.EpisodeCount == nil {
		return AnimeRecord{}, &MissingElementError{Field: "episodecount"}
	}
	episodeCount, err := parseInt("episodecount", *raw.EpisodeCount)
	if err != nil {
		return AnimeRecord{}, err
	}
	if raw.Titles == nil {
		return AnimeRecord{}, &MissingElementError{Field: "titles"}
	}
	if raw.Episodes == nil {
		return AnimeRecord{}, &MissingElementError{Field: "episodes"}
	}

	episodes := make([]EpisodeRecord, 0, len(raw.Episodes.Episodes))
	for _, ep := range raw.Episodes.Episodes {
		rec, err := unpackEpisode(ep)
		if err != nil {
			return AnimeRecord{}, fmt.Errorf("anime %d: %w", aid, err)
		}
		episodes = append(episodes, rec)
	}

	return AnimeRecord{
		AID:          aid,
		Type:         strings.TrimSpace(*raw.Type),
		EpisodeCount: episodeCount,
		StartDate:    optionalDate(raw.StartDate),
		EndDate:      optionalDate(raw.EndDate),
		Titles:       unpackTitles(raw.Titles.Titles),
		Episodes:     episodes,
	}, nil
}

// UnpackTitles decodes the anime titles dump. Like UnpackAnime it checks
// for the <error> envelope first.
func UnpackTitles(doc []byte) ([]TitlesIndexEntry, error) {
	if err := CheckEnvelope(doc); err != nil {
		return nil, err
	}
	return decodeTitles(doc)
}

func decodeTitles(doc []byte) ([]TitlesIndexEntry, error) {
	var raw xmlTitlesDump
	if err := newDecoder(doc).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode titles document: %w", err)
	}

	entries := make([]TitlesIndexEntry, 0, len(raw.Anime))
	for _, a := range raw.Anime {
		if a.AID == nil {
			return nil, &MissingElementError{Field: "aid"}
		}
		aid, err := parseInt("aid", *a.AID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, TitlesIndexEntry{
			AID:    aid,
			Titles: unpackTitles(a.Titles),
		})
	}
	return entries, nil
}

func unpackEpisode(ep xmlEpisode) (EpisodeRecord, error) {
	if ep.EpNo == nil {
		return EpisodeRecord{}, &MissingElementError{Field: "epno"}
	}
	if ep.EpNo.Type == nil {
		return EpisodeRecord{}, &MissingElementError{Field: "epno type"}
	}
	epType, err := parseInt("epno type", *ep.EpNo.Type)
	if err != nil {
		return EpisodeRecord{}, err
	}
	if ep.Length == nil {
		return EpisodeRecord{}, &MissingElementError{Field: "length"}
	}
	length, err := parseInt("length", *ep.Length)
	if err != nil {
		return EpisodeRecord{}, err
	}

	titles := make([]EpisodeTitleRecord, 0, len(ep.Titles))
	for _, t := range ep.Titles {
		titles = append(titles, EpisodeTitleRecord{Text: t.Text, Lang: t.Lang})
	}

	return EpisodeRecord{
		EpNo:          strings.TrimSpace(ep.EpNo.Text),
		Type:          epType,
		LengthMinutes: length,
		Titles:        titles,
	}, nil
}

func unpackTitles(raw []xmlTitle) []TitleRecord {
	titles := make([]TitleRecord, 0, len(raw))
	for _, t := range raw {
		titles = append(titles, TitleRecord{Text: t.Text, Type: t.Type, Lang: t.Lang})
	}
	return titles
}

func optionalDate(s *string) *Date {
	if s == nil {
		return nil
	}
	return ParseDate(strings.TrimSpace(*s))
}

func parseInt(field, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &FormatError{Field: field, Value: value, Err: err}
	}
	return n, nil
}

// MarshalTitles renders entries in the titles dump format. It is used only
// when the original upstream bytes are not available.
func MarshalTitles(entries []TitlesIndexEntry) ([]byte, error) {
	dump := xmlTitlesDump{Anime: make([]xmlTitlesAnime, 0, len(entries))}
	for _, e := range entries {
		aid := strconv.Itoa(e.AID)
		a := xmlTitlesAnime{AID: &aid, Titles: make([]xmlTitle, 0, len(e.Titles))}
		for _, t := range e.Titles {
			a.Titles = append(a.Titles, xmlTitle{Text: t.Text, Type: t.Type, Lang: t.Lang})
		}
		dump.Anime = append(dump.Anime, a)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(dump); err != nil {
		return nil, fmt.Errorf("encode titles document: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

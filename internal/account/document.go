package account

import (
	"encoding/xml"
	"time"

	"github.com/soundtouchd/soundtouch-cloud/internal/presets"
)

// Document is the structured form of one upstream account snapshot. The raw
// bytes are cached verbatim; this tree is decoded fresh on every request and
// patched with locally-owned data before it is returned.
type Document struct {
	XMLName   xml.Name         `xml:"account"`
	AccountID string           `xml:"accountID,attr"`
	Sources   []Source         `xml:"sources>source"`
	Devices   []DocumentDevice `xml:"devices>device"`
}

// Source is one credential-bearing service registration. The credential is
// the element text; the patch step overwrites it with the freshest known
// refresh token for matching music-provider sources.
type Source struct {
	SourceID    string `xml:"sourceID,attr,omitempty"`
	Provider    string `xml:"source,attr"`
	Username    string `xml:"username,attr,omitempty"`
	DisplayName string `xml:"displayName,attr,omitempty"`
	UpdatedOn   string `xml:"updatedOn,attr,omitempty"`
	Credential  string `xml:",chardata"`
}

// DocumentDevice is one speaker within the snapshot.
type DocumentDevice struct {
	DeviceID string           `xml:"deviceID,attr"`
	Name     string           `xml:"name,omitempty"`
	Presets  []DocumentPreset `xml:"presets>preset"`
	Recents  []DocumentRecent `xml:"recents>recent"`
}

// DocumentPreset is one favorite button in the snapshot. The id attribute is
// the button number.
type DocumentPreset struct {
	ButtonNumber int         `xml:"id,attr"`
	CreatedOn    string      `xml:"createdOn,attr,omitempty"`
	UpdatedOn    string      `xml:"updatedOn,attr,omitempty"`
	ContentItem  ContentItem `xml:"ContentItem"`
	Source       *Source     `xml:"source"`
}

// DocumentRecent is one history entry in the snapshot.
type DocumentRecent struct {
	DeviceID    string      `xml:"deviceID,attr,omitempty"`
	UTCTime     string      `xml:"utcTime,attr,omitempty"`
	ContentItem ContentItem `xml:"ContentItem"`
	Source      *Source     `xml:"source"`
}

// ContentItem identifies what is playing, independent of button or slot.
type ContentItem struct {
	Source        string `xml:"source,attr"`
	Type          string `xml:"type,attr,omitempty"`
	Location      string `xml:"location,attr"`
	SourceAccount string `xml:"sourceAccount,attr,omitempty"`
	ItemName      string `xml:"itemName,omitempty"`
	ContainerArt  string `xml:"containerArt,omitempty"`
}

// ParseDocument decodes a raw snapshot into the document tree.
func ParseDocument(raw []byte) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// presetToDocument converts a locally-owned preset row into its snapshot
// representation for the overlay step.
func presetToDocument(p presets.Preset) DocumentPreset {
	return DocumentPreset{
		ButtonNumber: p.ButtonNumber,
		CreatedOn:    p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedOn:    p.UpdatedAt.UTC().Format(time.RFC3339),
		ContentItem: ContentItem{
			Source:       p.SourceID,
			Type:         p.ContentItemType,
			Location:     p.Location,
			ItemName:     p.Name,
			ContainerArt: p.ContainerArt,
		},
	}
}

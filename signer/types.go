// Copyright The SignPDFKit Authors.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package signer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/signpdfkit/signpdfkit-go/native"
)

// Visibility is the appearance of the signature field
type Visibility int

const (
	Invisible Visibility = iota
	VisibleImage
	VisibleQR
	VisibleImageFromChar
	VisibleQRFromChar
)

// Subfilter is the signature dictionary subfilter
type Subfilter int

const (
	// ADBE is adbe.pkcs7.detached
	ADBE Subfilter = iota
	// PAdES is ETSI.CAdES.detached
	PAdES
)

// SignatureType distinguishes approval signatures from seals
type SignatureType int

const (
	Signature SignatureType = iota
	Seal
)

// DSS selects whether revocation evidence is embedded in the Document
// Security Store
type DSS int

const (
	DSSNo DSS = iota
	DSSYes
)

// SignOptions holds the placement, appearance and metadata of a signature
type SignOptions struct {
	ImagePath     string
	URL           string
	Location      string
	Reason        string
	ContactInfo   string
	FieldID       string
	Character     string
	SignatureType SignatureType
	Page          int
	Subfilter     Subfilter
	Visibility    Visibility
	X             float64
	Y             float64
	Width         float64
	Height        float64
	DSS           DSS
}

// DefaultSignOptions returns the options used when a request carries none
func DefaultSignOptions() SignOptions {
	return SignOptions{
		ImagePath:     "example.png",
		URL:           "signpdfkit.com",
		Location:      "Jakarta",
		Reason:        "Need to sign",
		ContactInfo:   "signpdfkit@gmail.com",
		FieldID:       "SignPDFKit",
		Character:     "#",
		SignatureType: Signature,
		Page:          1,
		Subfilter:     ADBE,
		Visibility:    Invisible,
		X:             0.0,
		Y:             0.0,
		Width:         50.0,
		Height:        50.0,
		DSS:           DSSNo,
	}
}

// withDefaults returns o with every unset field taken from
// DefaultSignOptions. The zero values of the enumerations and of X and Y
// equal their defaults.
func (o SignOptions) withDefaults() SignOptions {
	def := DefaultSignOptions()
	for _, f := range []struct {
		value *string
		def   string
	}{
		{&o.ImagePath, def.ImagePath},
		{&o.URL, def.URL},
		{&o.Location, def.Location},
		{&o.Reason, def.Reason},
		{&o.ContactInfo, def.ContactInfo},
		{&o.FieldID, def.FieldID},
		{&o.Character, def.Character},
	} {
		if *f.value == "" {
			*f.value = f.def
		}
	}
	if o.Page <= 0 {
		o.Page = def.Page
	}
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	return o
}

func (o SignOptions) digestRequest(inputPath string) native.DigestRequest {
	return native.DigestRequest{
		InputPath:     inputPath,
		ImagePath:     o.ImagePath,
		URL:           o.URL,
		Location:      o.Location,
		Reason:        o.Reason,
		ContactInfo:   o.ContactInfo,
		FieldID:       o.FieldID,
		Character:     o.Character,
		SignatureType: int(o.SignatureType),
		Page:          o.Page,
		Subfilter:     int(o.Subfilter),
		Visibility:    int(o.Visibility),
		X:             o.X,
		Y:             o.Y,
		Width:         o.Width,
		Height:        o.Height,
		DSS:           int(o.DSS),
	}
}

// SignRequest is used to sign a PDF
type SignRequest struct {
	// InputPath is the PDF to sign
	InputPath string

	// OutputPath is where the signed PDF is written
	OutputPath string

	// Options overrides DefaultSignOptions field by field. Empty strings and
	// non-positive Page, Width or Height keep their default values.
	Options *SignOptions
}

// PreSignData is the pre-signature document returned by the native digest
// calculation. Only response_code has a fixed type; the data payload is kept
// raw and decoded on demand.
type PreSignData struct {
	ResponseCode   int             `json:"response_code"`
	ResponseStatus json.RawMessage `json:"response_status,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
}

// Status returns response_status as text
func (d *PreSignData) Status() string {
	var status string
	if err := json.Unmarshal(d.ResponseStatus, &status); err == nil {
		return status
	}
	return string(d.ResponseStatus)
}

// Digest returns data.digest. It fails if the payload is not an object or
// carries no digest string.
func (d *PreSignData) Digest() (string, error) {
	var data struct {
		Digest json.RawMessage `json:"digest"`
	}
	if err := json.Unmarshal(d.Data, &data); err != nil {
		return "", fmt.Errorf("malformed pre-signature data: %w", err)
	}
	var digest string
	if err := json.Unmarshal(data.Digest, &digest); err != nil || digest == "" {
		return "", errors.New("pre-signature data carries no digest")
	}
	return digest, nil
}

// Info decodes the data payload. Fields holding an unexpected type are left
// zero and reported through the returned error; the other fields are still
// filled in.
func (d *PreSignData) Info() (PreSignInfo, error) {
	var info PreSignInfo
	err := json.Unmarshal(d.Data, &info)
	return info, err
}

// PreSignInfo is the data payload of a successful digest calculation
type PreSignInfo struct {
	Br1              int    `json:"br1"`
	Br2              int    `json:"br2"`
	Br3              int    `json:"br3"`
	Br4              int    `json:"br4"`
	CatalogObjNumber int    `json:"catalog_obj_number"`
	CatalogObjString string `json:"catalog_obj_string"`
	Digest           string `json:"digest"`
	IsDSS            int    `json:"is_dss"`
	IsTrailerStream  int    `json:"is_trailer_stream"`
	NewStartxref     int    `json:"new_startxref"`
	ObjSize          int    `json:"obj_size"`
	PDF              string `json:"pdf"`
}

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

// Package testhelper implements utility routines required for writing unit tests.
// The testhelper should only be used in unit tests.
package testhelper

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	mrand "math/rand"
	"sync"
	"time"

	"golang.org/x/crypto/ocsp"
)

const (
	// OCSPServerURL is the OCSP responder the revokable leaf points to
	OCSPServerURL = "http://ocsp.example.com"

	// CRLDistributionPointURL is the CRL distribution point the revokable
	// leaf points to
	CRLDistributionPointURL = "http://crl.example.com/ca.crl"
)

var (
	rsaRoot          RSACertTuple
	revokableRSALeaf RSACertTuple
)

var setupCertificatesOnce sync.Once

type RSACertTuple struct {
	Cert       *x509.Certificate
	PrivateKey *rsa.PrivateKey
}

// GetRSARootCertificate returns root certificate signed using RSA algorithm
func GetRSARootCertificate() RSACertTuple {
	setupCertificates()
	return rsaRoot
}

// GetRevokableRSALeafCertificate returns leaf certificate that specifies an
// OCSP server and a CRL distribution point, signed using RSA algorithm
func GetRevokableRSALeafCertificate() RSACertTuple {
	setupCertificates()
	return revokableRSALeaf
}

// CreateCRL returns a DER encoded CRL issued by the root certificate,
// revoking the given serial numbers.
func CreateCRL(revoked ...*big.Int) []byte {
	root := GetRSARootCertificate()
	entries := make([]x509.RevocationListEntry, 0, len(revoked))
	for _, serial := range revoked {
		entries = append(entries, x509.RevocationListEntry{
			SerialNumber:   serial,
			RevocationTime: time.Now().Add(-time.Hour),
		})
	}
	crlBytes, err := x509.CreateRevocationList(rand.Reader, &x509.RevocationList{
		Number:                    big.NewInt(1),
		ThisUpdate:                time.Now().Add(-time.Hour),
		NextUpdate:                time.Now().Add(24 * time.Hour),
		RevokedCertificateEntries: entries,
	}, root.Cert, root.PrivateKey)
	if err != nil {
		panic(err)
	}
	return crlBytes
}

// PEMEncodeCRL wraps a DER encoded CRL in "X509 CRL" PEM armor.
func PEMEncodeCRL(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "X509 CRL", Bytes: der})
}

// CreateOCSPRequest returns a DER encoded OCSP request for the revokable leaf.
func CreateOCSPRequest() []byte {
	leaf := GetRevokableRSALeafCertificate()
	root := GetRSARootCertificate()
	req, err := ocsp.CreateRequest(leaf.Cert, root.Cert, &ocsp.RequestOptions{Hash: crypto.SHA1})
	if err != nil {
		panic(err)
	}
	return req
}

// CreateOCSPResponse returns a DER encoded OCSP response for the revokable
// leaf with the desired status, signed by the root certificate.
func CreateOCSPResponse(status int) []byte {
	leaf := GetRevokableRSALeafCertificate()
	root := GetRSARootCertificate()
	template := ocsp.Response{
		Status:       status,
		SerialNumber: leaf.Cert.SerialNumber,
		ThisUpdate:   time.Now().Add(-time.Hour),
		NextUpdate:   time.Now().Add(time.Hour),
	}
	if status == ocsp.Revoked {
		template.RevokedAt = time.Now().Add(-time.Hour)
	}
	resp, err := ocsp.CreateResponse(root.Cert, root.Cert, template, root.PrivateKey)
	if err != nil {
		panic(err)
	}
	return resp
}

func setupCertificates() {
	setupCertificatesOnce.Do(func() {
		rsaRoot = getRSACertTuple("SignPDFKit Test RSA Root", nil)
		revokableRSALeaf = getRevokableRSACertTuple("SignPDFKit Test Revokable RSA Leaf Cert", &rsaRoot)
	})
}

func getRSACertTuple(cn string, issuer *RSACertTuple) RSACertTuple {
	pk, _ := rsa.GenerateKey(rand.Reader, 2048)
	template := getCertTemplate(issuer == nil, cn)
	return getRSACertTupleWithTemplate(template, pk, issuer)
}

func getRevokableRSACertTuple(cn string, issuer *RSACertTuple) RSACertTuple {
	pk, _ := rsa.GenerateKey(rand.Reader, 2048)
	template := getCertTemplate(false, cn)
	template.OCSPServer = []string{OCSPServerURL}
	template.CRLDistributionPoints = []string{CRLDistributionPointURL}
	return getRSACertTupleWithTemplate(template, pk, issuer)
}

func getRSACertTupleWithTemplate(template *x509.Certificate, privKey *rsa.PrivateKey, issuer *RSACertTuple) RSACertTuple {
	var certBytes []byte
	if issuer != nil {
		certBytes, _ = x509.CreateCertificate(rand.Reader, template, issuer.Cert, &privKey.PublicKey, issuer.PrivateKey)
	} else {
		certBytes, _ = x509.CreateCertificate(rand.Reader, template, template, &privKey.PublicKey, privKey)
	}

	cert, _ := x509.ParseCertificate(certBytes)
	return RSACertTuple{
		Cert:       cert,
		PrivateKey: privKey,
	}
}

func getCertTemplate(isRoot bool, cn string) *x509.Certificate {
	template := &x509.Certificate{
		Subject: pkix.Name{
			Organization: []string{"SignPDFKit"},
			Country:      []string{"ID"},
			Locality:     []string{"Jakarta"},
			CommonName:   cn,
		},
		NotBefore: time.Now().Add(-time.Hour),
		KeyUsage:  x509.KeyUsageDigitalSignature | x509.KeyUsageContentCommitment,
	}

	if isRoot {
		template.SerialNumber = big.NewInt(1)
		template.NotAfter = time.Now().AddDate(0, 1, 0)
		template.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign
		template.BasicConstraintsValid = true
		template.MaxPathLen = 1
		template.IsCA = true
	} else {
		template.SerialNumber = big.NewInt(int64(mrand.Intn(200) + 2))
		template.NotAfter = time.Now().AddDate(0, 0, 1)
	}

	return template
}

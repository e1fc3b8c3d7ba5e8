package services

import "math/rand/v2"

const certificateIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateCertificateID returns "CERT-" followed by six uppercase
// alphanumerics. Collisions are not checked.
func GenerateCertificateID() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = certificateIDAlphabet[rand.IntN(len(certificateIDAlphabet))]
	}
	return "CERT-" + string(b)
}

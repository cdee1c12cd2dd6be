package constants

import (
	"bytes"
	"testing"
)

func TestAlgorithmSizes(t *testing.T) {
	t.Run("ML-KEM-1024", testMLKEMParameters)
	t.Run("ML-DSA-65", testMLDSAParameters)
}

func testMLKEMParameters(t *testing.T) {
	tests := []struct {
		name string
		got  int
		want int
	}{
		{"MLKEMPublicKeySize", MLKEMPublicKeySize, 1568},
		{"MLKEMPrivateKeySize", MLKEMPrivateKeySize, 3168},
		{"MLKEMCiphertextSize", MLKEMCiphertextSize, 1568},
		{"MLKEMSharedSecretSize", MLKEMSharedSecretSize, 32},
		{"MLKEMKeySeedSize", MLKEMKeySeedSize, 64},
		{"MLKEMEncapsulationSeedSize", MLKEMEncapsulationSeedSize, 32},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
}

func testMLDSAParameters(t *testing.T) {
	tests := []struct {
		name string
		got  int
		want int
	}{
		{"MLDSAPublicKeySize", MLDSAPublicKeySize, 1952},
		{"MLDSAPrivateKeySize", MLDSAPrivateKeySize, 4032},
		{"MLDSASignatureSize", MLDSASignatureSize, 3309},
		{"MLDSASeedSize", MLDSASeedSize, 32},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
}

func TestSelfTestInputsAreDistinct(t *testing.T) {
	seeds := map[string]byte{
		"POSTSeedByte":           POSTSeedByte,
		"KEMPCTRandomnessByte":   KEMPCTRandomnessByte,
		"KEMKATSeedByte":         KEMKATSeedByte,
		"KEMKATRandomnessByte":   KEMKATRandomnessByte,
		"SignatureKATSeedByte":   SignatureKATSeedByte,
	}
	seen := make(map[byte]string)
	for name, b := range seeds {
		if other, ok := seen[b]; ok {
			t.Errorf("%s and %s share fill byte %#x", name, other, b)
		}
		seen[b] = name
	}
	if SignatureKATMessage == SignaturePCTMessage {
		t.Error("KAT and PCT messages must differ")
	}
}

func TestIntegrityPlaceholderIsNotHex(t *testing.T) {
	// A placeholder that decoded as a digest could be mistaken for a
	// provisioned value.
	for _, c := range IntegrityPlaceholder {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') {
			continue
		}
		return
	}
	t.Error("IntegrityPlaceholder must not be a valid hex string")
}

func TestIntegrityPlaceholderLength(t *testing.T) {
	if len(IntegrityPlaceholder) != 2*IntegrityDigestSize {
		t.Errorf("len(IntegrityPlaceholder) = %d, want %d", len(IntegrityPlaceholder), 2*IntegrityDigestSize)
	}
}

func TestFill(t *testing.T) {
	got := Fill(0xAA, 4)
	if !bytes.Equal(got, []byte{0xAA, 0xAA, 0xAA, 0xAA}) {
		t.Errorf("Fill(0xAA, 4) = %x", got)
	}
	if len(Fill(0x00, 0)) != 0 {
		t.Error("Fill with n=0 should be empty")
	}
}

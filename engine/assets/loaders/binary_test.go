package loaders

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func spirv(words ...uint32) []byte {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
	return b
}

func TestBytesToBytecode(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    []uint32
		wantErr bool
	}{
		{"empty", nil, nil, true},
		{"not a multiple of 4", []byte{0x03, 0x02, 0x23, 0x07, 0x01}, nil, true},
		{"bad magic", spirv(0xdeadbeef, 1), nil, true},
		{"valid", spirv(SPIRVMagic, 0x00010600, 42), []uint32{SPIRVMagic, 0x00010600, 42}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BytesToBytecode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("BytesToBytecode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("BytesToBytecode() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("word %d = 0x%x, want 0x%x", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBinaryLoaderLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.ms_6_8.spv")
	if err := os.WriteFile(path, spirv(SPIRVMagic, 7), 0o644); err != nil {
		t.Fatal(err)
	}
	bl := &BinaryLoader{}
	res, err := bl.Load(path, map[string]string{"name": "default"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if res.Name != "default" || res.DataSize != 8 {
		t.Errorf("resource = %+v", res)
	}
	code, ok := res.Data.([]uint32)
	if !ok || len(code) != 2 || code[1] != 7 {
		t.Errorf("Data = %#v", res.Data)
	}
	if err := bl.Unload(res); err != nil || res.Data != nil {
		t.Errorf("Unload() = %v, data %v", err, res.Data)
	}
}

package engine

import (
	"reflect"
	"testing"
)

func TestNewTensor(t *testing.T) {
	t.Run("builds int64 tensor", func(t *testing.T) {
		tensor, err := NewTensor([]int64{0, 40, 41, 3, 0}, []int64{1, 5})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tensor.DType() != DTypeInt64 {
			t.Errorf("dtype = %s, want %s", tensor.DType(), DTypeInt64)
		}
		if !reflect.DeepEqual(tensor.Shape(), []int64{1, 5}) {
			t.Errorf("shape = %v, want [1 5]", tensor.Shape())
		}
	})

	t.Run("builds float32 tensor", func(t *testing.T) {
		tensor, err := NewTensor(make([]float32, 256), []int64{1, 256})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tensor.DType() != DTypeFloat32 {
			t.Errorf("dtype = %s, want %s", tensor.DType(), DTypeFloat32)
		}
	})

	t.Run("rejects shape and data mismatch", func(t *testing.T) {
		if _, err := NewTensor([]float32{1, 2, 3}, []int64{1, 2}); err == nil {
			t.Fatal("expected shape mismatch error")
		}
	})

	t.Run("rejects non-positive dimensions", func(t *testing.T) {
		if _, err := NewTensor([]float32{}, []int64{1, 0}); err == nil {
			t.Fatal("expected error for zero dimension")
		}
	})

	t.Run("data is copied both ways", func(t *testing.T) {
		src := []int64{1, 2, 3}
		tensor, err := NewTensor(src, []int64{3})
		if err != nil {
			t.Fatal(err)
		}

		src[0] = 99
		got := tensor.Data().([]int64)
		if got[0] != 1 {
			t.Errorf("tensor aliases caller slice: %v", got)
		}

		got[1] = 99
		again := tensor.Data().([]int64)
		if again[1] != 2 {
			t.Errorf("caller can mutate tensor backing: %v", again)
		}
	})
}

func TestExtractFloat32(t *testing.T) {
	t.Run("extracts float32 payload", func(t *testing.T) {
		tensor, err := NewTensor([]float32{0.5, -1.0}, []int64{2})
		if err != nil {
			t.Fatal(err)
		}

		data, err := ExtractFloat32(tensor)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(data, []float32{0.5, -1.0}) {
			t.Errorf("data = %v", data)
		}
	})

	t.Run("rejects int64 tensor", func(t *testing.T) {
		tensor, err := NewTensor([]int64{1}, []int64{1})
		if err != nil {
			t.Fatal(err)
		}

		if _, err := ExtractFloat32(tensor); err == nil {
			t.Fatal("expected dtype error")
		}
	})

	t.Run("rejects nil tensor", func(t *testing.T) {
		if _, err := ExtractFloat32(nil); err == nil {
			t.Fatal("expected error for nil tensor")
		}
	})
}

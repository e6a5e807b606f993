package imagestore

import "testing"

func TestSplitURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{
			name:       "well formed",
			uri:        "gs://my-bucket/receipts/u1/abc.jpg",
			wantBucket: "my-bucket",
			wantObject: "receipts/u1/abc.jpg",
		},
		{
			name:    "missing scheme",
			uri:     "my-bucket/receipts/abc.jpg",
			wantErr: true,
		},
		{
			name:    "bucket only",
			uri:     "gs://my-bucket",
			wantErr: true,
		},
		{
			name:    "empty object path",
			uri:     "gs://my-bucket/",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := splitURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("splitURI() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if bucket != tt.wantBucket || object != tt.wantObject {
				t.Errorf("splitURI() = (%q, %q), want (%q, %q)", bucket, object, tt.wantBucket, tt.wantObject)
			}
		})
	}
}

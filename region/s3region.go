package region

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/cockroachdb/errors"
	"github.com/devlibx/lsmgo/internal/base"
)

// CloudMirror configures the optional S3 write-through mirror used by
// S3Region. Grounded in _examples/devlibx-pebble/cloud/aws/cloud_fs.go
// and cloud_file_proxy.go, the teacher's own vfs.FS-wrapping S3 backend.
type CloudMirror struct {
	Bucket   string
	BasePath string
	Region   string
}

// S3Region wraps a LocalRegion and additionally uploads the region's
// bytes to S3 on creation. Reads are always served from the local mirror
// (S3 is never a read source for this engine, keeping the read error
// surface identical to LocalRegion) — it is a durability add-on, the
// same role the teacher's CloudFile plays as a write-through proxy over
// a local vfs.File.
type S3Region struct {
	*LocalRegion
	mirror   CloudMirror
	uploader *s3manager.Uploader
}

// NewCloudMirror opens an AWS session scoped to mirror.Region (or the
// teacher's ap-south-1 default when unset) and returns an uploader ready
// for use by CreateAndWriteS3.
func NewCloudMirror(mirror CloudMirror) (*s3manager.Uploader, error) {
	if mirror.Region == "" {
		mirror.Region = "ap-south-1"
	}
	sess, err := session.NewSession(&aws.Config{Region: aws.String(mirror.Region)})
	if err != nil {
		return nil, errors.Wrapf(base.ErrIO, "create aws session: %v", err)
	}
	return s3manager.NewUploader(sess), nil
}

// CreateAndWriteS3 creates a local region exactly as CreateAndWrite does,
// then best-effort mirrors the written file to S3 under
// mirror.BasePath/<path's base name>. A mirror upload failure does not
// fail the create — the local region is the durability boundary, matching
// the teacher's CloudFile.Close swallowing the upload error after the
// local file has already been synced.
func CreateAndWriteS3(path string, data []byte, mirror CloudMirror, uploader *s3manager.Uploader) (*S3Region, error) {
	local, err := CreateAndWrite(path, data)
	if err != nil {
		return nil, err
	}

	r := &S3Region{LocalRegion: local, mirror: mirror, uploader: uploader}
	r.uploadBestEffort()
	return r, nil
}

func (r *S3Region) uploadBestEffort() {
	f, err := os.Open(r.Path())
	if err != nil {
		return
	}
	defer f.Close()

	key := r.mirror.BasePath + "/" + filepath.Base(r.Path())
	_, err = r.uploader.Upload(&s3manager.UploadInput{
		Body:   bufio.NewReader(f),
		Bucket: aws.String(r.mirror.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		fmt.Println("lsmgo: s3 mirror upload failed:", key, err)
	}
}

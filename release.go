package fontsplit

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

const defaultAwsRegion = `eu-west-2`

var extMimetype = map[string]string{
	".ttf":   "font/truetype",
	".otf":   "font/opentype",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".css":   "text/css; charset=utf-8",
}

// Publisher is the destination of a release.
type Publisher interface {
	// Check verifies that srcDir can be published, before anything is removed.
	Check(srcDir string) error
	// Clean removes a previous release.
	Clean(ctx context.Context) error
	// Put publishes the file at filename under the slash separated name.
	Put(ctx context.Context, name, filename string) error
}

// Release publishes all files in srcDir, replacing the previous release. It returns the number of published files. Stylesheets refer to their subsets by relative URLs, so they are published unchanged.
func Release(ctx context.Context, srcDir string, pub Publisher) (int, error) {
	if info, err := os.Stat(srcDir); err != nil {
		return 0, err
	} else if !info.IsDir() {
		return 0, fmt.Errorf("%v: not a directory", srcDir)
	}

	files := []string{}
	err := filepath.WalkDir(srcDir, func(filename string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		} else if d.Type().IsRegular() {
			files = append(files, filename)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := pub.Check(srcDir); err != nil {
		return 0, err
	} else if err := pub.Clean(ctx); err != nil {
		return 0, err
	}
	for i, filename := range files {
		rel, err := filepath.Rel(srcDir, filename)
		if err != nil {
			return i, err
		} else if err := pub.Put(ctx, filepath.ToSlash(rel), filename); err != nil {
			return i, fmt.Errorf("%v: %w", rel, err)
		}
	}
	return len(files), nil
}

// DirPublisher publishes to a local directory.
type DirPublisher struct {
	Dir string
}

// Check implements Publisher. The release directory may not be, contain or be inside srcDir, as cleaning it would remove the files being released.
func (pub DirPublisher) Check(srcDir string) error {
	src, err := filepath.Abs(srcDir)
	if err != nil {
		return err
	}
	dst, err := filepath.Abs(pub.Dir)
	if err != nil {
		return err
	}
	if isWithin(src, dst) || isWithin(dst, src) {
		return fmt.Errorf("%w: %v overlaps with %v", ErrInvalidRelease, pub.Dir, srcDir)
	}
	return nil
}

// isWithin returns true if child equals parent or lies below it.
func isWithin(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Clean implements Publisher.
func (pub DirPublisher) Clean(ctx context.Context) error {
	if err := os.RemoveAll(pub.Dir); err != nil {
		return err
	}
	return os.MkdirAll(pub.Dir, 0755)
}

// Put implements Publisher.
func (pub DirPublisher) Put(ctx context.Context, name, filename string) error {
	dst := filepath.Join(pub.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	r, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// S3Publisher publishes to a prefix in an S3 bucket.
type S3Publisher struct {
	// these should be set before running Init(), or left to defaults
	Bucket string
	Prefix string
	Region string
	Logger *log.Logger

	s3svc    s3iface.S3API
	uploader *s3manager.Uploader
}

// Init sets up the AWS session, credentials are taken from the environment.
func (pub *S3Publisher) Init() error {
	if pub.Region == "" {
		pub.Region = defaultAwsRegion
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(pub.Region),
	})
	if err != nil {
		return fmt.Errorf("failed to set up aws session: %v", err)
	}
	pub.init(s3.New(sess))
	return nil
}

func (pub *S3Publisher) init(svc s3iface.S3API) {
	if pub.Logger == nil {
		pub.Logger = log.New(io.Discard, "", 0)
	}
	pub.s3svc = svc
	pub.uploader = s3manager.NewUploaderWithClient(svc)
}

// Key returns the object key of a published file.
func (pub *S3Publisher) Key(name string) string {
	return path.Join(strings.Trim(pub.Prefix, "/"), name)
}

// Check implements Publisher. A prefix is required, so that a release never replaces the whole bucket.
func (pub *S3Publisher) Check(srcDir string) error {
	if strings.Trim(pub.Prefix, "/") == "" {
		return fmt.Errorf("%w: no prefix set for s3://%s", ErrInvalidRelease, pub.Bucket)
	}
	return nil
}

// Clean implements Publisher, deleting all objects under the prefix.
func (pub *S3Publisher) Clean(ctx context.Context) error {
	prefix := strings.Trim(pub.Prefix, "/")
	if prefix == "" {
		return fmt.Errorf("%w: no prefix set for s3://%s", ErrInvalidRelease, pub.Bucket)
	}
	prefix += "/"

	var keys []string
	err := pub.s3svc.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(pub.Bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, last bool) bool {
		for _, r := range page.Contents {
			keys = append(keys, *r.Key)
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("error listing s3://%s/%s: %v", pub.Bucket, prefix, err)
	}

	// DeleteObjects accepts at most 1000 keys
	for 0 < len(keys) {
		n := len(keys)
		if 1000 < n {
			n = 1000
		}
		objs := []*s3.ObjectIdentifier{}
		for _, key := range keys[:n] {
			objs = append(objs, &s3.ObjectIdentifier{Key: aws.String(key)})
			pub.Logger.Println("Deleting", key)
		}
		_, err := pub.s3svc.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(pub.Bucket),
			Delete: &s3.Delete{
				Objects: objs,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return fmt.Errorf("error deleting objects in s3://%s/%s: %v", pub.Bucket, prefix, err)
		}
		keys = keys[n:]
	}
	return nil
}

// Put implements Publisher.
func (pub *S3Publisher) Put(ctx context.Context, name, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	key := pub.Key(name)
	pub.Logger.Println("Uploading", key)
	input := &s3manager.UploadInput{
		Bucket: aws.String(pub.Bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if mimetype, ok := extMimetype[path.Ext(name)]; ok {
		input.ContentType = aws.String(mimetype)
	}
	_, err = pub.uploader.UploadWithContext(ctx, input)
	return err
}

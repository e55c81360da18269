package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/tdewolff/fontsplit"
)

type Release struct {
	Quiet  bool   `short:"q" desc:"Suppress output except for errors."`
	Force  bool   `short:"f" desc:"Force replacing an existing release without asking."`
	Bucket string `short:"b" desc:"S3 bucket to publish to instead of a directory."`
	Prefix string `short:"p" desc:"Key prefix in the S3 bucket."`
	Region string `short:"r" desc:"AWS region of the S3 bucket." default:"eu-west-2"`
	Output string `short:"o" desc:"Release directory."`
	Input  string `index:"0" desc:"Directory with split fonts."`
}

func (cmd *Release) Run() error {
	if cmd.Quiet {
		quiet()
	}

	var pub fontsplit.Publisher
	var dst string
	if cmd.Bucket != "" {
		if strings.Trim(cmd.Prefix, "/") == "" {
			return fmt.Errorf("key prefix not set, refusing to replace all objects in s3://%s", cmd.Bucket)
		}
		s3pub := &fontsplit.S3Publisher{
			Bucket: cmd.Bucket,
			Prefix: cmd.Prefix,
			Region: cmd.Region,
			Logger: Info,
		}
		if err := s3pub.Init(); err != nil {
			return err
		}
		pub = s3pub
		dst = fmt.Sprintf("s3://%s/%s/", cmd.Bucket, s3pub.Key(""))
		if !confirm(fmt.Sprintf("replace all objects under %s?", dst), cmd.Force) {
			return nil
		}
	} else if cmd.Output != "" {
		if !confirmOverwrite(cmd.Output, cmd.Force) {
			return nil
		}
		pub = fontsplit.DirPublisher{Dir: cmd.Output}
		dst = cmd.Output
	} else {
		return fmt.Errorf("release directory or S3 bucket not set")
	}

	n, err := fontsplit.Release(context.Background(), cmd.Input, pub)
	if err != nil {
		return err
	}
	Info.Printf("Released %d files to %v\n", n, dst)
	return nil
}

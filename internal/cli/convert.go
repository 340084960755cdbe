package cli

import (
	"github.com/go-sod/clamp/internal/dataset"
	"github.com/go-sod/clamp/internal/logging"
	"github.com/go-sod/clamp/internal/util"
	"github.com/spf13/cobra"
)

func newConvertCmd() *cobra.Command {
	var (
		in        string
		out       string
		delimiter string
	)
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a labeled data set to the LIBSVM sparse format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			delim, err := dataset.DelimiterFor(delimiter)
			if err != nil {
				return err
			}
			set, err := dataset.LoadFile(in, dataset.Options{Delimiter: delim, Labeled: true})
			if err != nil {
				return err
			}
			buf := util.GetBytesBuffer()
			defer util.PutBytesBuffer(buf)
			if err := dataset.WriteLIBSVM(buf, set); err != nil {
				return err
			}
			logging.FromContext(cmd.Context()).Infof("converted %d rows from %s", set.Len(), in)
			return writeOutput(cmd, out, buf)
		},
	}
	cmd.Flags().StringVarP(&in, "input", "i", "", "labeled input data set")
	cmd.Flags().StringVarP(&out, "outfile", "o", "", "output file [stdout]")
	cmd.Flags().StringVar(&delimiter, "delimiter", "comma", "field delimiter: comma or tab")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

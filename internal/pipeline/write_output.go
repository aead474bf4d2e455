package pipeline

import (
	"fmt"

	"img2text/internal/extract"
	"img2text/internal/logger"
	"img2text/internal/writer"
)

func writeOutput(clients *Clients, opts Options, report extract.Report, res *Result) {
	if opts.OutputFile != "" {
		logger.DebugLog("[writeOutput]: writing report to %s", opts.OutputFile)
		if err := writer.WriteText(opts.OutputFile, report.String()); err != nil {
			logger.DebugLog("[writeOutput]: error writing %s: %v", opts.OutputFile, err)
			res.Failures[opts.OutputFile] = fmt.Errorf("writing report %s: %w", opts.OutputFile, err)
		}
	}

	if opts.CSVFile != "" {
		logger.DebugLog("[writeOutput]: writing %d rows to %s", len(report.Blocks), opts.CSVFile)
		if err := clients.csv.Replace(report.Blocks, opts.CSVFile); err != nil {
			logger.DebugLog("[writeOutput]: error writing %s: %v", opts.CSVFile, err)
			res.Failures[opts.CSVFile] = fmt.Errorf("writing CSV %s: %w", opts.CSVFile, err)
		}
	}
}

// Command demultiplex splits FASTA/FASTQ files into one file per barcode.
package main

import "github.com/Altius/demultiplex/internal/cli"

func main() {
	cli.Execute()
}

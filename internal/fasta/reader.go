// Package fasta is the gene source: it discovers genome files and reads
// FASTA/Q records into the driver's Gene/Genome types, walking directories
// with cwalk and reading records with bio/seqio/fastx.
package fasta

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/iafan/cwalk"
	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"

	"github.com/SimoneColli/PanDelos-plus/internal/gene"
)

func init() {
	// Genes may be protein or nucleotide alphabets; disable the strict
	// nucleotide/protein alphabet check bio/seq otherwise enforces.
	seq.ValidateSeq = false
}

// DiscoverFiles concurrently walks dir and returns every file whose name
// matches pattern, sorted so genome ordering is reproducible across runs.
func DiscoverFiles(dir string, pattern *regexp.Regexp, threads int) ([]string, error) {
	if threads <= 0 {
		threads = 1
	}

	var mu sync.Mutex
	var files []string

	cwalk.NumWorkers = threads
	err := cwalk.WalkWithSymlinks(dir, func(relPath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if pattern.MatchString(info.Name()) {
			mu.Lock()
			files = append(files, filepath.Join(dir, relPath))
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", dir)
	}

	sort.Strings(files)
	return files, nil
}

// ReadGenome reads every record in path as one gene of the genome
// identified by id. A record's file_position is its 1-based ordinal within
// the file.
func ReadGenome(id int, path string) (*gene.Genome, error) {
	reader, err := fastx.NewReader(nil, path, "")
	if err != nil {
		return nil, errors.Wrapf(err, "opening genome file %s", path)
	}
	defer reader.Close()

	var genes []*gene.Gene
	pos := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "reading genome file %s", path)
		}
		pos++
		alphabet := strings.ToUpper(string(record.Seq.Seq))
		genes = append(genes, gene.New(alphabet, pos, id))
	}

	return &gene.Genome{ID: id, Genes: genes}, nil
}

// ReadGenomes reads one genome per file in paths, in order, assigning
// genome IDs 0..len(paths)-1 by position.
func ReadGenomes(paths []string) (*gene.GenomesContainer, error) {
	genomes := make([]*gene.Genome, len(paths))
	for i, p := range paths {
		g, err := ReadGenome(i, p)
		if err != nil {
			return nil, err
		}
		genomes[i] = g
	}
	return gene.NewGenomesContainer(genomes), nil
}

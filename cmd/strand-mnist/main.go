// Command strand-mnist trains the batch-normalized CNN on MNIST-format
// data and reports per-epoch loss and accuracy. It can checkpoint the
// parameters and running statistics and resume or evaluate from one.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/strand-ml/strand/internal/autodiff"
	"github.com/strand-ml/strand/internal/backend/cpu"
	"github.com/strand-ml/strand/internal/checkpoint"
	"github.com/strand-ml/strand/internal/dataset"
	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/optim"
	"github.com/strand-ml/strand/internal/tensor"
)

type config struct {
	trainImages string
	trainLabels string
	testImages  string
	testLabels  string

	epochs    int
	batchSize int
	limit     int

	lr         float64
	momentum   float64
	bnMomentum float64
	bnEps      float64
	seed       int64

	checkpointPath string
	resumePath     string
	evalOnly       bool
	debug          bool
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.trainImages, "train-images", "data/train-images-idx3-ubyte", "training images (IDX3)")
	flag.StringVar(&cfg.trainLabels, "train-labels", "data/train-labels-idx1-ubyte", "training labels (IDX1)")
	flag.StringVar(&cfg.testImages, "test-images", "data/t10k-images-idx3-ubyte", "test images (IDX3)")
	flag.StringVar(&cfg.testLabels, "test-labels", "data/t10k-labels-idx1-ubyte", "test labels (IDX1)")
	flag.IntVar(&cfg.epochs, "epochs", 3, "training epochs")
	flag.IntVar(&cfg.batchSize, "batch-size", 64, "minibatch size")
	flag.IntVar(&cfg.limit, "limit", 0, "cap examples per split (0 = all)")
	flag.Float64Var(&cfg.lr, "lr", 0.01, "learning rate")
	flag.Float64Var(&cfg.momentum, "momentum", 0.9, "SGD momentum")
	flag.Float64Var(&cfg.bnMomentum, "bn-momentum", float64(nn.DefaultMomentum), "running statistics decay")
	flag.Float64Var(&cfg.bnEps, "bn-eps", float64(nn.DefaultEps), "normalization epsilon")
	flag.Int64Var(&cfg.seed, "seed", 42, "RNG seed")
	flag.StringVar(&cfg.checkpointPath, "checkpoint", "", "save a checkpoint here after training")
	flag.StringVar(&cfg.resumePath, "resume", "", "load parameters and statistics from this checkpoint first")
	flag.BoolVar(&cfg.evalOnly, "eval", false, "skip training, evaluate the test split only")
	flag.BoolVar(&cfg.debug, "debug", false, "log per-call batch statistics")
	flag.Parse()
	return cfg
}

func main() {
	cfg := parseFlags()
	log.SetFlags(log.LstdFlags)

	if err := run(cfg); err != nil {
		log.Printf("strand-mnist: %v", err)
		os.Exit(1)
	}
}

type trainBackend = *autodiff.Backend[*cpu.CPUBackend]

func run(cfg config) error {
	backend := autodiff.New(cpu.New())
	rng := rand.New(rand.NewSource(cfg.seed))

	stats := nn.NewBatchStats()
	model := NewModel[trainBackend](backend, rng, stats)
	model.SetNormConfig(nn.BatchNormConfig{
		Eps:      float32(cfg.bnEps),
		Momentum: float32(cfg.bnMomentum),
		Debug:    cfg.debug,
	})

	if cfg.resumePath != "" {
		snap, err := checkpoint.Load(cfg.resumePath)
		if err != nil {
			return err
		}
		if err := model.Restore(snap); err != nil {
			return err
		}
		log.Printf("resumed from %s (%d tensors, %d normalization sites)",
			cfg.resumePath, len(snap.Tensors), len(snap.RunningStats))
	}

	test, err := loadSplit(cfg.testImages, cfg.testLabels, cfg.limit, "test")
	if err != nil {
		return err
	}

	if !cfg.evalOnly {
		train, err := loadSplit(cfg.trainImages, cfg.trainLabels, cfg.limit, "train")
		if err != nil {
			return err
		}
		loss := nn.NewCrossEntropyLoss[trainBackend]()
		opt := optim.NewSGD(model.Parameters(), float32(cfg.lr), float32(cfg.momentum))

		for epoch := 1; epoch <= cfg.epochs; epoch++ {
			trainLoss := trainEpoch(backend, model, loss, opt, train, cfg.batchSize, rng)
			testLoss, testAcc := evaluate(backend, model, test, cfg.batchSize)
			log.Printf("epoch %d/%d: train loss %.4f, test loss %.4f, test accuracy %.2f%%",
				epoch, cfg.epochs, trainLoss, testLoss, testAcc*100)
		}
	} else {
		testLoss, testAcc := evaluate(backend, model, test, cfg.batchSize)
		log.Printf("test loss %.4f, test accuracy %.2f%%", testLoss, testAcc*100)
	}

	if cfg.checkpointPath != "" {
		if err := checkpoint.Save(cfg.checkpointPath, model.Snapshot()); err != nil {
			return err
		}
		log.Printf("checkpoint written to %s", cfg.checkpointPath)
	}
	return nil
}

func loadSplit(imagePath, labelPath string, limit int, name string) (*dataset.Dataset, error) {
	d, err := dataset.Load(imagePath, labelPath)
	if err != nil {
		return nil, fmt.Errorf("load %s split: %w", name, err)
	}
	if limit > 0 && limit < d.Len() {
		d.Images = d.Images[:limit]
		d.Labels = d.Labels[:limit]
	}
	s := d.Summarize()
	log.Printf("%s split: %d examples, mean pixel %.4f (std %.4f), %d classes",
		name, s.Count, s.MeanPixel, s.StdPixel, len(s.ClassHist))
	return d, nil
}

// trainEpoch runs one pass over the training data and returns the mean
// batch loss. Each batch records a fresh tape: forward, backward,
// parameter step, clear.
func trainEpoch(
	backend trainBackend,
	model *Model[trainBackend],
	loss *nn.CrossEntropyLoss[trainBackend],
	opt *optim.SGD[trainBackend],
	data *dataset.Dataset,
	batchSize int,
	rng *rand.Rand,
) float64 {
	model.SetTraining(true)

	var total float64
	batches := data.Batches(batchSize, rng)
	for _, b := range batches {
		backend.Tape().StartRecording()

		x := tensor.MustFromSlice(backend, b.Pixels, b.Size, 1, data.Rows, data.Cols)
		y := tensor.MustFromSlice(backend, b.Labels, b.Size)

		l := loss.Forward(model.Forward(x), y)
		total += float64(l.Item())

		grads, err := autodiff.Backward(backend, l.Raw())
		if err != nil {
			panic(err)
		}
		opt.Step(grads)

		backend.Tape().StopRecording()
		backend.Tape().Clear()
	}
	if len(batches) == 0 {
		return 0
	}
	return total / float64(len(batches))
}

// evaluate runs the test split in inference mode, so normalization uses
// the running statistics accumulated during training.
func evaluate(
	backend trainBackend,
	model *Model[trainBackend],
	data *dataset.Dataset,
	batchSize int,
) (meanLoss float64, accuracy float64) {
	model.SetTraining(false)
	defer model.SetTraining(true)

	loss := nn.NewCrossEntropyLoss[trainBackend]()
	var totalLoss float64
	var correct float64

	for _, b := range data.Batches(batchSize, nil) {
		x := tensor.MustFromSlice(backend, b.Pixels, b.Size, 1, data.Rows, data.Cols)
		y := tensor.MustFromSlice(backend, b.Labels, b.Size)

		logits := model.Forward(x)
		totalLoss += float64(loss.Forward(logits, y).Item()) * float64(b.Size)
		correct += float64(nn.Accuracy(logits, y)) * float64(b.Size)
	}
	n := float64(data.Len())
	if n == 0 {
		return 0, 0
	}
	return totalLoss / n, correct / n
}

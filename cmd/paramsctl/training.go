package main

import (
	"time"

	params "github.com/kpe/go-params"
)

var modelParams = params.Declare("ModelParams").
	Field("hidden_size", 768).Doc("Width of the hidden layers").
	Field("num_layers", 12).Doc("Number of transformer layers").
	Field("num_heads", 12).Doc("Attention heads per layer").
	Field("dropout", 0.1).Doc("Dropout probability").
	Derived("head_size", func(p *params.Params) any {
		heads := p.Value("num_heads").(int)
		if heads == 0 {
			return 0
		}
		return p.Value("hidden_size").(int) / heads
	}).
	MustBuild()

var trainParams = params.Declare("TrainParams", modelParams).
	Field("output_dir", nil).Type(params.String).Doc("Where checkpoints are written").Positional().
	Field("learning_rate", 1e-4).Doc("Peak learning rate").
	Field("batch_size", 32).Doc("Examples per step").Required().
	Field("warmup", 10*time.Minute).Doc("Learning rate warmup period").
	Field("use_tpu", false).Doc("Run on TPU").
	Field("tags", []string{}).Doc("Comma separated run tags").
	Field("seed", 42).
	MustBuild()

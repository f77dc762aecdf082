// Package hf implements the ai interfaces against the Hugging Face inference API.
//
// Classification uses a zero-shot NLI model (facebook/bart-large-mnli by
// default) and entity tagging a token classification model
// (dslim/bert-base-NER by default) with simple aggregation.
//
//	provider, err := hf.NewProvider(ai.NewConfig(ai.WithToken(os.Getenv("HF_TOKEN"))))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
package hf

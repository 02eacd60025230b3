package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/edilaw/normakit"
	"github.com/edilaw/normakit/config"
	"github.com/edilaw/normakit/core"
	"github.com/edilaw/normakit/ingestion"
)

// A small corpus of normative fixtures spanning all three tiers,
// used to bootstrap a working index for local experimentation.
type fixture struct {
	source     string
	assignment ingestion.Assignment
	text       string
}

var fixtures = []fixture{
	{
		source: "dpr-380-2001-estratto",
		assignment: ingestion.Assignment{
			Level: core.LevelNazionale,
		},
		text: `D.P.R. n. 380/2001 - Testo unico delle disposizioni legislative e regolamentari in materia edilizia.

Art. 3. Definizioni degli interventi edilizi. Ai fini del presente testo unico si intendono per interventi di manutenzione ordinaria gli interventi edilizi che riguardano le opere di riparazione, rinnovamento e sostituzione delle finiture degli edifici e quelle necessarie ad integrare o mantenere in efficienza gli impianti tecnologici esistenti. Si intendono per interventi di ristrutturazione edilizia gli interventi rivolti a trasformare gli organismi edilizi mediante un insieme sistematico di opere che possono portare ad un organismo edilizio in tutto o in parte diverso dal precedente.

Art. 10. Interventi subordinati a permesso di costruire. Costituiscono interventi di trasformazione urbanistica ed edilizia del territorio e sono subordinati a permesso di costruire gli interventi di nuova costruzione, gli interventi di ristrutturazione urbanistica e gli interventi di ristrutturazione edilizia che portino ad un organismo edilizio in tutto o in parte diverso dal precedente.

Art. 22. Interventi subordinati a segnalazione certificata di inizio attivita. Sono realizzabili mediante la segnalazione certificata di inizio attivita gli interventi di manutenzione straordinaria qualora riguardino le parti strutturali dell'edificio, gli interventi di restauro e di risanamento conservativo e gli interventi di ristrutturazione edilizia diversi da quelli indicati nell'articolo 10.`,
	},
	{
		source: "dm-1444-1968-estratto",
		assignment: ingestion.Assignment{
			Level: core.LevelNazionale,
		},
		text: `Decreto n. 1444/1968 - Limiti inderogabili di densita edilizia, di altezza, di distanza fra i fabbricati.

Art. 8. Limiti di altezza degli edifici. Le altezze massime degli edifici per le diverse zone territoriali omogenee sono stabilite come segue: per le zone A l'altezza massima dei nuovi edifici non puo superare l'altezza degli edifici circostanti di carattere storico-artistico.

Art. 9. Limiti di distanza tra i fabbricati. Le distanze minime tra fabbricati per le diverse zone territoriali omogenee sono stabilite come segue: per i nuovi edifici ricadenti in altre zone e prescritta in tutti i casi la distanza minima assoluta di dieci metri tra pareti finestrate e pareti di edifici antistanti.`,
	},
	{
		source: "lr-lazio-38-1999-estratto",
		assignment: ingestion.Assignment{
			Level:  core.LevelRegionale,
			Region: "Lazio",
		},
		text: `Legge Regionale n. 38/1999 - Norme sul governo del territorio della Regione Lazio.

Art. 55. Zone agricole. Nelle zone agricole la nuova edificazione e consentita soltanto se necessaria alla conduzione del fondo e all'esercizio delle attivita agricole e di quelle ad esse connesse. L'indice di edificabilita per le residenze non puo superare 0,01 metri quadrati per metro quadrato.

Art. 57. Interventi in zona agricola. Nelle zone agricole gli interventi di recupero del patrimonio edilizio esistente sono sempre consentiti nel rispetto delle caratteristiche tipologiche dei manufatti.`,
	},
	{
		source: "lr-lazio-7-2017-estratto",
		assignment: ingestion.Assignment{
			Level:    core.LevelRegionale,
			Region:   "Lazio",
			Province: "Viterbo",
		},
		text: `Legge Regionale n. 7/2017 - Disposizioni per la rigenerazione urbana e per il recupero edilizio.

Art. 4. Interventi di ristrutturazione edilizia. Sono consentiti interventi di ristrutturazione edilizia con aumento della volumetria fino a un massimo del venti per cento della volumetria esistente, anche con cambiamento di destinazione d'uso.

Art. 6. Interventi diretti. Negli ambiti dichiarati dai comuni sono sempre consentiti interventi di demolizione e ricostruzione con incremento fino al trentacinque per cento della volumetria esistente.`,
	},
	{
		source: "regolamento-edilizio-tarquinia",
		assignment: ingestion.Assignment{
			Level:        core.LevelComunale,
			Region:       "Lazio",
			Province:     "Viterbo",
			Municipality: "Tarquinia",
		},
		text: `Regolamento edilizio del Comune di Tarquinia.

Art. 12. Altezze massime. Nelle zone residenziali di completamento l'altezza massima degli edifici non puo superare i dieci metri e cinquanta, misurati dal piano di campagna alla linea di gronda.

Art. 14. Distanze dai confini. La distanza minima delle costruzioni dai confini di proprieta e fissata in cinque metri. E ammessa la costruzione in aderenza previo accordo registrato tra i proprietari confinanti.

Art. 21. Recinzioni. Le recinzioni verso gli spazi pubblici non possono superare l'altezza di due metri, di cui la parte cieca non superiore a un metro.`,
	},
	{
		source: "regolamento-edilizio-montalto",
		assignment: ingestion.Assignment{
			Level:        core.LevelComunale,
			Region:       "Lazio",
			Province:     "Viterbo",
			Municipality: "Montalto di Castro",
		},
		text: `Regolamento edilizio del Comune di Montalto di Castro.

Art. 9. Parcheggi privati. Nelle nuove costruzioni devono essere riservati spazi per parcheggi in misura non inferiore a un metro quadrato per ogni dieci metri cubi di costruzione.

Art. 16. Altezze e piani. Nelle zone di espansione gli edifici non possono superare i tre piani fuori terra e comunque l'altezza massima di nove metri e cinquanta.`,
	},
}

var (
	dataDir  = flag.String("data", "./norma_db", "index directory")
	degraded = flag.Bool("degraded", false, "ingest without an embedding service")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	cfg := config.Default()
	cfg.DataDir = *dataDir
	cfg.AI.Degraded = *degraded

	sys, err := normakit.Open(cfg)
	if err != nil {
		panic(err)
	}
	defer sys.Close()

	pipeline, err := sys.NewPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()
	total := 0
	for _, f := range fixtures {
		count, err := pipeline.IngestText(ctx, f.source, f.text, f.assignment)
		if err != nil {
			panic(err)
		}
		total += count
	}

	slog.Info("seed complete", "documents", len(fixtures), "chunks", total)
}

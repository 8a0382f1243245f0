package config

type WorkerKeyStruct struct {
	MaterialDownloadsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	MaterialDownloadsQueue: "material_downloads_queue",
}

package sqlinline

const QCreateGenerationEvents = `--sql 3b8f0a52-6c1e-4d7a-9f43-2a5e8c1d7b90
create table if not exists generation_events (
  id uuid primary key,
  request_id text not null default '',
  source text not null,
  provider text not null,
  fallback_reason text not null default '',
  craft_type text not null default '',
  region text not null default '',
  language text not null default '',
  country text not null default '',
  latency_ms integer not null default 0,
  created_at timestamptz not null default now()
);
`

const QInsertGenerationEvent = `--sql e40f651c-a8b3-44c7-a911-bb8a0ed5f6ef
insert into generation_events(id, request_id, source, provider, fallback_reason, craft_type, region, language, country, latency_ms, created_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text, $7::text, $8::text, $9::text, $10::int, now());
`

const QGenerationSummary = `--sql 0f0557a2-1731-4fc6-8cbe-8540b1d2b6df
select
  source,
  provider,
  count(*)::bigint as total,
  coalesce(avg(latency_ms), 0)::float8 as avg_latency_ms
from generation_events
where created_at >= now() - make_interval(hours => $1::int)
group by source, provider
order by source, provider;
`
